package printables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/printgrab/internal/utils"
)

const (
	DefaultBaseURL    = "https://www.printables.com"
	DefaultGraphQLURL = "https://api.printables.com/graphql/"
)

const downloadLinkQuery = `mutation GetDownloadLink($id: ID!, $modelId: ID!, $fileType: DownloadFileTypeEnum!, $source: DownloadSourceEnum!) {
  getDownloadLink(id: $id, printId: $modelId, fileType: $fileType, source: $source) {
    ok
    output {
      link
    }
  }
}`

// Client talks to the model site through a shared HTTP client. The URLs
// are fields so tests can point them at local servers.
type Client struct {
	BaseURL    string
	GraphQLURL string
	http       *utils.HTTPClient
}

func NewClient(httpClient *utils.HTTPClient) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		GraphQLURL: DefaultGraphQLURL,
		http:       httpClient,
	}
}

// Resolve turns a model page URL into the model's complete ordered file
// list, download links included. No retries happen here; a dead site
// fails the whole run.
func (c *Client) Resolve(modelURL string) (*Model, error) {
	id, slug, err := ParseModelURL(modelURL)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("op", "printables/client").Msgf("Resolving model %s", id)
	page, err := c.fetchFilesPage(id, slug)
	if err != nil {
		return nil, err
	}
	payload, err := extractFilesPayload(page)
	if err != nil {
		return nil, err
	}
	model := &Model{
		ID:    payload.Data.Model.ID.String(),
		Name:  payload.Data.Model.Name,
		Files: payload.files(),
	}
	if model.ID == "" {
		model.ID = id
	}
	if len(model.Files) == 0 {
		return nil, fmt.Errorf("%w: model %s has no files", ErrNotFound, id)
	}
	log.Debug().Str("op", "printables/client").Msgf("Model %s lists %d files", model.ID, len(model.Files))
	for i := range model.Files {
		link, err := c.downloadLink(model.Files[i], model.ID)
		if err != nil {
			return nil, err
		}
		model.Files[i].URL = link
	}
	return model, nil
}

func (c *Client) fetchFilesPage(id, slug string) ([]byte, error) {
	pageURL := fmt.Sprintf("%s/model/%s/files", c.BaseURL, id)
	if slug != "" {
		pageURL = fmt.Sprintf("%s/model/%s-%s/files", c.BaseURL, id, slug)
	}
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating page request: %v", ErrNetwork, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrNetwork, pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: model %s", ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: files page returned status %d", ErrNetwork, resp.StatusCode)
	}
	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading files page: %v", ErrNetwork, err)
	}
	return page, nil
}

type downloadLinkRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type downloadLinkResponse struct {
	Data struct {
		GetDownloadLink struct {
			Ok     bool `json:"ok"`
			Output struct {
				Link string `json:"link"`
			} `json:"output"`
		} `json:"getDownloadLink"`
	} `json:"data"`
}

func (c *Client) downloadLink(file File, modelID string) (string, error) {
	log.Debug().Str("op", "printables/client").Msgf("Requesting download link for %s", file.Name)
	payload := downloadLinkRequest{
		OperationName: "GetDownloadLink",
		Query:         downloadLinkQuery,
		Variables: map[string]any{
			"id":       file.ID,
			"modelId":  modelID,
			"fileType": file.Type,
			"source":   "model_detail",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encoding link request: %v", ErrParse, err)
	}
	req, err := http.NewRequest("POST", c.GraphQLURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating link request: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: requesting link for %s: %v", ErrNetwork, file.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: link endpoint returned status %d for %s", ErrNetwork, resp.StatusCode, file.Name)
	}
	var decoded downloadLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decoding link response for %s: %v", ErrParse, file.Name, err)
	}
	if !decoded.Data.GetDownloadLink.Ok || decoded.Data.GetDownloadLink.Output.Link == "" {
		return "", fmt.Errorf("%w: no download link for %s", ErrParse, file.Name)
	}
	return decoded.Data.GetDownloadLink.Output.Link, nil
}
