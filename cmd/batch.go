package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/tanq16/printgrab/internal/pipeline"
)

type BatchEntry struct {
	OutputPath string   `yaml:"op,omitempty"`
	Link       string   `yaml:"link"`
	Extensions []string `yaml:"ext,omitempty"`
}

type BatchFile struct {
	Models []BatchEntry `yaml:"models"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [OPTIONS]",
		Short: "Download multiple models from a YAML file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			yamlFile := args[0]
			data, err := os.ReadFile(yamlFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading YAML file: %v\n", err)
				os.Exit(1)
			}
			var batchFile BatchFile
			if err := yaml.Unmarshal(data, &batchFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing YAML file: %v\n", err)
				os.Exit(1)
			}
			jobs := buildJobsFromBatch(batchFile)
			if len(jobs) == 0 {
				fmt.Fprintf(os.Stderr, "No valid jobs found in the batch file\n")
				os.Exit(1)
			}
			runJobs(jobs)
		},
	}
	return cmd
}

func buildJobsFromBatch(batchFile BatchFile) []pipeline.Job {
	var jobs []pipeline.Job
	for _, entry := range batchFile.Models {
		if entry.Link == "" {
			fmt.Fprintf(os.Stderr, "Warning: Empty link found in models section, skipping...\n")
			continue
		}
		job := pipeline.Job{
			ModelURL:   entry.Link,
			OutputDir:  cfg.Output,
			Extensions: cfg.Extensions,
			DryRun:     dryRun,
		}
		if entry.OutputPath != "" {
			job.OutputDir = entry.OutputPath
		}
		if len(entry.Extensions) > 0 {
			job.Extensions = entry.Extensions
		}
		jobs = append(jobs, job)
	}
	return jobs
}
