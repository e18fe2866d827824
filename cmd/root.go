package cmd

import (
	"context"
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivannaranjo/gmedia/internal/auth"
	"github.com/ivannaranjo/gmedia/internal/batch"
	"github.com/ivannaranjo/gmedia/internal/media"
	"github.com/ivannaranjo/gmedia/internal/output"
	"github.com/ivannaranjo/gmedia/internal/sinks"
	"github.com/ivannaranjo/gmedia/internal/utils"
)

var (
	outputPath      string
	chunkSize       int64
	workers         int
	timeout         time.Duration
	kaTimeout       time.Duration
	userAgent       string
	proxyURL        string
	proxyUsername   string
	proxyPassword   string
	headers         []string
	apiKey          string
	credentialsFile string
	urlListFile     string
	debug           bool
)

var GmediaVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "gmedia [url]",
	Short:   "gmedia downloads media resources chunk by chunk",
	Version: GmediaVersion,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		if len(args) == 0 && urlListFile == "" {
			output.PrintError("No URL or URL list provided")
			os.Exit(1)
		}
		if urlListFile != "" && len(args) > 0 {
			output.PrintError("Cannot specify url argument and --urllist together, choose one")
			os.Exit(1)
		}
		clientConfig := utils.HTTPClientConfig{
			Timeout:       timeout,
			KATimeout:     kaTimeout,
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			Headers:       utils.ParseHeaderArgs(headers),
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := applyAuth(ctx, clientConfig.Headers); err != nil {
			output.PrintError(err.Error())
			os.Exit(1)
		}

		if urlListFile != "" {
			entries, err := utils.ReadDownloadList(urlListFile)
			if err != nil {
				output.PrintError("Failed to read URL list file")
				os.Exit(1)
			}
			err = batch.Run(ctx, entries, batch.Config{
				Workers:      workers,
				ChunkSize:    chunkSize,
				ClientConfig: clientConfig,
			})
			if err != nil {
				fmt.Println()
				output.PrintError("Encountered failed download(s)")
				os.Exit(1)
			}
			return
		}

		url := args[0]
		if _, err := u.Parse(url); err != nil {
			output.PrintError("Invalid URL format")
			os.Exit(1)
		}
		if apiKey != "" {
			url = auth.WithAPIKey(url, apiKey)
		}
		if err := downloadOne(ctx, url, clientConfig); err != nil {
			output.PrintError(err.Error())
			os.Exit(1)
		}
	},
}

func applyAuth(ctx context.Context, headers map[string]string) error {
	if apiKey != "" && credentialsFile != "" {
		return fmt.Errorf("only one of --api-key or --credentials can be provided")
	}
	if credentialsFile == "" {
		return nil
	}
	token, err := auth.AccessTokenFromCredentials(ctx, credentialsFile)
	if err != nil {
		return fmt.Errorf("error getting OAuth token: %v", err)
	}
	headers["Authorization"] = "Bearer " + token
	return nil
}

func downloadOne(ctx context.Context, url string, clientConfig utils.HTTPClientConfig) error {
	dest := outputPath
	if dest == "" {
		parts := strings.Split(strings.SplitN(url, "?", 2)[0], "/")
		dest = parts[len(parts)-1]
		if dest == "" {
			dest = "download"
		}
	}

	var sink interface {
		Write(p []byte) (int, error)
		Close() error
		Abort() error
	}
	if strings.HasPrefix(dest, "s3://") {
		bucket, key, err := sinks.ParseS3Path(dest)
		if err != nil {
			return err
		}
		sink, err = sinks.NewS3Sink(ctx, bucket, key, "")
		if err != nil {
			return err
		}
	} else {
		if _, err := os.Stat(dest); err == nil {
			dest = utils.RenewOutputPath(dest)
		}
		fileSink, err := sinks.NewFileSink(dest)
		if err != nil {
			return err
		}
		sink = fileSink
	}

	client := utils.NewMediaHTTPClient(clientConfig)
	start := time.Now()
	// Leave room next to the bar for the byte count and speed columns.
	barWidth := max(10, min(40, output.TerminalWidth()-40))
	downloader, err := media.New(client, media.Options{
		ChunkSize: chunkSize,
		ProgressFunc: func(p media.Progress) {
			if p.Status != media.StatusInProgress {
				return
			}
			elapsed := time.Since(start).Seconds()
			fmt.Printf("\r%s %s %s  ", output.ProgressBar(p.BytesDownloaded, 0, barWidth),
				utils.FormatBytes(uint64(p.BytesDownloaded)), utils.FormatSpeed(p.BytesDownloaded, elapsed))
		},
	})
	if err != nil {
		sink.Abort()
		return err
	}

	result := downloader.DownloadContext(ctx, url, sink)
	fmt.Println()
	if result.Status != media.StatusCompleted {
		sink.Abort()
		return fmt.Errorf("download failed: %v", result.Err)
	}
	if err := sink.Close(); err != nil {
		return err
	}
	output.PrintSuccess(fmt.Sprintf("%s %s (%s)", output.StyleSymbols["pass"], dest,
		utils.FormatBytes(uint64(result.BytesDownloaded))))
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path or s3://bucket/key (inferred from URL if not provided)")
	rootCmd.Flags().Int64VarP(&chunkSize, "chunk-size", "c", utils.DefaultChunkSize, "Bytes requested per ranged GET")
	rootCmd.Flags().StringVarP(&urlListFile, "urllist", "l", "", "Path to YAML file containing URLs and output paths")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of list entries to download in parallel")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.Flags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.Flags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.Flags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.Flags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "API key appended to the target URL")
	rootCmd.Flags().StringVar(&credentialsFile, "credentials", "", "OAuth client credentials file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
