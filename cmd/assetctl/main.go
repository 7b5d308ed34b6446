package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/app"
	"github.com/yourusername/asset-store-fs/internal/domain"
	"github.com/yourusername/asset-store-fs/internal/infrastructure"
)

var (
	serverURL   string
	configFile  string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:          "assetctl",
		Short:        "assetctl - manage the local asset store",
		Long:         `A command-line interface for downloading, deleting and unpublishing assets through the asset store server.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "Server URL")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	for _, cmd := range []*cobra.Command{downloadCmd, unpublishCmd, deleteCmd} {
		addAssetFlags(cmd)
		cmd.Flags().Bool("queue", false, "Queue the operation instead of waiting for it")
	}
	addAssetFlags(resolveCmd)
	recordsCmd.Flags().StringP("status", "s", "", "Filter by status")
	recordsCmd.Flags().StringP("locale", "l", "", "Filter by locale")
	jobsCmd.Flags().StringP("status", "s", "", "Filter by status")
	jobsCmd.Flags().StringP("action", "a", "", "Filter by action")

	rootCmd.AddCommand(downloadCmd, deleteCmd, unpublishCmd, recordsCmd, statsCmd, jobsCmd, jobCmd, resolveCmd)
}

// ensureServer starts the server unless --no-auto-start is set
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func addAssetFlags(cmd *cobra.Command) {
	cmd.Flags().String("uid", "", "Asset uid")
	cmd.Flags().String("filename", "", "Asset filename")
	cmd.Flags().String("url", "", "Remote asset URL")
	cmd.Flags().String("locale", "", "Locale code")
	cmd.Flags().String("download-id", "", "Download id")
	cmd.Flags().StringArray("meta", nil, "Extra metadata as key=value (repeatable)")
}

func assetFromFlags(cmd *cobra.Command) (domain.Asset, error) {
	uid, _ := cmd.Flags().GetString("uid")
	filename, _ := cmd.Flags().GetString("filename")
	rawURL, _ := cmd.Flags().GetString("url")
	locale, _ := cmd.Flags().GetString("locale")
	downloadID, _ := cmd.Flags().GetString("download-id")
	meta, _ := cmd.Flags().GetStringArray("meta")

	asset := domain.Asset{
		UID:        uid,
		Filename:   filename,
		URL:        rawURL,
		Locale:     locale,
		DownloadID: downloadID,
	}
	metadata, err := parseMetadata(meta)
	if err != nil {
		return domain.Asset{}, err
	}
	asset.Metadata = metadata
	return asset, nil
}

// parseMetadata turns key=value pairs into a map
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// runAsset sends one lifecycle request, either directly or through the job queue
func runAsset(cmd *cobra.Command, action domain.JobAction) error {
	ensureServer()

	asset, err := assetFromFlags(cmd)
	if err != nil {
		return err
	}
	client := newAPIClient(serverURL)

	if queued, _ := cmd.Flags().GetBool("queue"); queued {
		var job domain.Job
		if err := client.post("/api/v1/jobs", map[string]interface{}{
			"action": action,
			"assets": []domain.Asset{asset},
		}, &job); err != nil {
			return err
		}
		fmt.Printf("Job queued\n")
		fmt.Printf("ID:     %s\n", job.ID)
		fmt.Printf("Status: %s\n", job.Status)
		return nil
	}

	var path string
	var payload interface{} = map[string]interface{}{"asset": asset}
	switch action {
	case domain.ActionDownload:
		path = "/api/v1/assets/download"
	case domain.ActionDelete:
		path = "/api/v1/assets/delete"
		payload = map[string]interface{}{"assets": []domain.Asset{asset}}
	case domain.ActionUnpublish:
		path = "/api/v1/assets/unpublish"
	}

	var resp struct {
		Asset *domain.Asset `json:"asset"`
	}
	if err := client.post(path, payload, &resp); err != nil {
		return err
	}
	printAsset(resp.Asset)
	return nil
}

func printAsset(asset *domain.Asset) {
	if asset == nil {
		fmt.Println("Nothing to do")
		return
	}
	fmt.Printf("UID:          %s\n", asset.UID)
	fmt.Printf("Locale:       %s\n", asset.Locale)
	fmt.Printf("Filename:     %s\n", asset.Filename)
	if asset.InternalURL != "" {
		fmt.Printf("Internal URL: %s\n", asset.InternalURL)
	}
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download an asset into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsset(cmd, domain.ActionDownload)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the folder holding an asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsset(cmd, domain.ActionDelete)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish",
	Short: "Remove the stored file of an asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsset(cmd, domain.ActionUnpublish)
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List asset records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		query := url.Values{}
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			query.Set("status", status)
		}
		if locale, _ := cmd.Flags().GetString("locale"); locale != "" {
			query.Set("locale", locale)
		}

		var records []domain.AssetRecord
		if err := newAPIClient(serverURL).get("/api/v1/assets", query, &records); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LOCALE\tUID\tFILENAME\tSTATUS\tBYTES\tUPDATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.Locale,
				truncate(r.UID, 24),
				truncate(r.Filename, 32),
				r.Status,
				r.Bytes,
				r.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show asset statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var stats domain.AssetStats
		if err := newAPIClient(serverURL).get("/api/v1/assets/stats", nil, &stats); err != nil {
			return err
		}

		fmt.Println("Asset Statistics:")
		fmt.Printf("  Total:        %d\n", stats.Total)
		fmt.Printf("  Stored:       %d\n", stats.Stored)
		fmt.Printf("  Pending:      %d\n", stats.Pending)
		fmt.Printf("  Downloading:  %d\n", stats.Downloading)
		fmt.Printf("  Failed:       %d\n", stats.Failed)
		fmt.Printf("  Removing:     %d\n", stats.Removing)
		fmt.Printf("  Absent:       %d\n", stats.Absent)
		fmt.Printf("  Stored bytes: %d\n", stats.StoredBytes)
		return nil
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List queued lifecycle jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		query := url.Values{}
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			query.Set("status", status)
		}
		if action, _ := cmd.Flags().GetString("action"); action != "" {
			query.Set("action", action)
		}

		var jobs []domain.Job
		if err := newAPIClient(serverURL).get("/api/v1/jobs", query, &jobs); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tACTION\tASSET\tSTATUS\tCREATED")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(j.ID, 8),
				j.Action,
				j.AssetKey,
				j.Status,
				j.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var jobCmd = &cobra.Command{
	Use:   "job [id]",
	Short: "Show job details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var job domain.Job
		if err := newAPIClient(serverURL).get("/api/v1/jobs/"+url.PathEscape(args[0]), nil, &job); err != nil {
			return err
		}

		fmt.Printf("Job Details:\n")
		fmt.Printf("  ID:      %s\n", job.ID)
		fmt.Printf("  Action:  %s\n", job.Action)
		fmt.Printf("  Asset:   %s\n", job.AssetKey)
		fmt.Printf("  Status:  %s\n", job.Status)
		fmt.Printf("  Created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
		if job.ErrorMessage != "" {
			fmt.Printf("  Error:   %s\n", job.ErrorMessage)
		}
		if result, err := app.JobResult(&job); err == nil && result != nil && result.InternalURL != "" {
			fmt.Printf("  Result:  %s\n", result.InternalURL)
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print where an asset would be stored, without the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := app.LoadConfig(configFile)
		if err != nil {
			return err
		}
		asset, err := assetFromFlags(cmd)
		if err != nil {
			return err
		}

		manager, err := app.NewAssetManager(
			config.AssetStore,
			infrastructure.NewHTTPFetcher(&config.Fetch),
			infrastructure.NewLocalFilesystem(),
			nil,
			zap.NewNop(),
		)
		if err != nil {
			return err
		}

		res, path, err := manager.Resolve(asset)
		if err != nil {
			return err
		}
		fmt.Printf("Layout:   %s\n", manager.Store().Layout)
		fmt.Printf("Relative: %s\n", res.RelativePath())
		fmt.Printf("Path:     %s\n", path)
		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
