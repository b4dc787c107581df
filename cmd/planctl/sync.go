package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"stockplan/internal/drive"
)

func newSyncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Pull the latest dataset exports from a Google Drive folder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "credentials-file",
				Usage:   "Path to a service account credentials JSON file",
				EnvVars: []string{"DRIVE_CREDENTIALS_FILE"},
			},
			&cli.StringFlag{
				Name:    "folder-id",
				Usage:   "Drive folder ID holding the dataset exports",
				EnvVars: []string{"DRIVE_FOLDER_ID"},
			},
			&cli.StringFlag{
				Name:    "folder-path",
				Usage:   "Drive folder path, resolved from the root when no folder ID is given",
				EnvVars: []string{"DRIVE_FOLDER_PATH"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Local dataset directory to refresh",
				Value:   "./data/datasets",
				EnvVars: []string{"APP_DATA_DIR"},
			},
		},
		Action: runSync,
	}
}

func runSync(c *cli.Context) error {
	ctx := c.Context

	service, err := newDriveService(c)
	if err != nil {
		return err
	}

	if c.String("folder-id") == "" && c.String("folder-path") == "" {
		return fmt.Errorf("either folder-id or folder-path is required")
	}

	syncer := drive.NewDatasetSync(service, c.String("folder-id"), c.String("folder-path"), c.String("data-dir"))

	refreshed, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}

	log.Printf("Refreshed %d dataset file(s) in %s", len(refreshed), c.String("data-dir"))
	return nil
}

// newDriveService authenticates from the credentials file flag, falling
// back to the GOOGLE_DRIVE_CREDENTIALS_JSON environment variable.
func newDriveService(c *cli.Context) (*drive.Service, error) {
	if path := c.String("credentials-file"); path != "" {
		return drive.NewServiceFromFile(c.Context, path)
	}

	if credsJSON := os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"); strings.TrimSpace(credsJSON) != "" {
		return drive.NewService(c.Context, []byte(credsJSON))
	}

	return nil, fmt.Errorf("drive credentials are required: set --credentials-file or GOOGLE_DRIVE_CREDENTIALS_JSON")
}
