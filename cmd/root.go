package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/printgrab/internal/config"
	"github.com/tanq16/printgrab/internal/output"
	"github.com/tanq16/printgrab/internal/pipeline"
	"github.com/tanq16/printgrab/internal/utils"
)

var (
	outputDir     string
	extensions    []string
	dryRun        bool
	verbose       bool
	fileLog       bool
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	configPath    string

	cfg              *config.Config
	globalHTTPConfig utils.HTTPClientConfig
)

var PrintgrabVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "printgrab [MODEL_URL]",
	Short:   "Printgrab downloads model files from Printables",
	Version: PrintgrabVersion,
	Args:    cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			output.PrintError("No model URL provided")
			os.Exit(1)
		}
		if len(args) > 1 {
			output.PrintError("Provide a single model URL, or use batch for multiple")
			os.Exit(1)
		}
		job := pipeline.Job{
			ModelURL:   args[0],
			OutputDir:  cfg.Output,
			Extensions: cfg.Extensions,
			DryRun:     dryRun,
		}
		runJobs([]pipeline.Job{job})
	},
}

func runJobs(jobs []pipeline.Job) {
	opts := pipeline.Options{
		ClientConfig: globalHTTPConfig,
		MaxAttempts:  cfg.Retries,
		RetryDelay:   cfg.RetryDelay,
		Verbose:      verbose,
	}
	if err := pipeline.Run(jobs, opts); err != nil {
		fmt.Println()
		output.PrintError("Encountered failed operation(s)")
		os.Exit(1)
	}
}

func applyFlagOverrides() {
	flags := rootCmd.PersistentFlags()
	if flags.Changed("output") {
		cfg.Output = outputDir
	}
	if flags.Changed("ext") {
		cfg.Extensions = extensions
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("keep-alive-timeout") {
		cfg.KeepAliveTimeout = kaTimeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if flags.Changed("proxy") {
		cfg.Proxy = proxyURL
	}
}

func buildHTTPConfig() utils.HTTPClientConfig {
	ua := cfg.UserAgent
	if ua == "randomize" {
		ua = utils.GetRandomUserAgent()
	}
	proxy := cfg.Proxy
	// Check if proxy URL contains auth
	parsedProxy, err := u.Parse(proxy)
	if err == nil && parsedProxy.User != nil && proxyUsername == "" {
		proxyUsername = parsedProxy.User.Username()
		if password, set := parsedProxy.User.Password(); set {
			proxyPassword = password
		}
		// Remove auth from URL to send in clientConfig
		parsedProxy.User = nil
		proxy = parsedProxy.String()
	}
	return utils.HTTPClientConfig{
		Timeout:       cfg.Timeout,
		KATimeout:     cfg.KeepAliveTimeout,
		ProxyURL:      proxy,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     ua,
		Headers:       utils.ParseHeaderArgs(headers),
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		utils.InitLogger(verbose)
		if fileLog {
			logFile, err := os.OpenFile(utils.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				output.PrintError("Failed to open log file")
				os.Exit(1)
			}
			utils.SetLogOutput(logFile)
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			output.PrintError(fmt.Sprintf("Failed to load config: %v", err))
			os.Exit(1)
		}
		applyFlagOverrides()
		globalHTTPConfig = buildHTTPConfig()
	}
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "Output directory for downloaded files")
	rootCmd.PersistentFlags().StringArrayVarP(&extensions, "ext", "e", []string{}, "File extensions to download (eg. .stl, .3mf); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry", false, "List files and destinations without downloading")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&fileLog, "log", false, "Write logs to "+utils.LogFile+" instead of stderr")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent (use 'randomize' for a random one)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default is the OS config dir)")
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCleanCmd())
}
