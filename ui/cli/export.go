// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/model"
)

// exportPageSize is the page size used when draining list endpoints.
const exportPageSize = 500

// exportData is the envelope written by the export command.
type exportData struct {
	ExportedAt time.Time          `json:"exported_at"`
	Version    string             `json:"version"`
	Server     model.Health       `json:"server"`
	Logs       []model.LogEntry   `json:"logs,omitempty"`
	Audit      []model.AuditEntry `json:"audit,omitempty"`
}

// exportCmd dumps the server's system logs and audit trail to a compressed
// JSON file for offline analysis or retention. Requires an admin session
// (run `terradesk login` first).
var exportCmd = &cobra.Command{
	Use:   "export [output-file]",
	Short: "Export system logs and the audit trail to a compressed (zstd) JSON file",
	Long: `Drains the server's /logs and /audit endpoints and writes everything into
a single Zstandard-compressed JSON file.

If an output file is specified, '.zst' will be appended to the name if it's
not already present. If no output file is specified, a default filename
'terradesk-export-YYYY-MM-DD.json.zst' is used.

Examples:
  # Export to a default file (e.g., terradesk-export-2026-08-31.json.zst)
  terradesk export

  # Export to a specific file
  terradesk export my-export.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var outputFile string
		if len(args) == 0 {
			outputFile = fmt.Sprintf("terradesk-export-%s.json.zst", time.Now().Format("2006-01-02"))
		} else {
			outputFile = args[0]
			if !strings.HasSuffix(outputFile, ".zst") {
				outputFile += ".zst"
			}
		}

		deps, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		if deps.Guard.Token() == "" {
			return fmt.Errorf("no stored session; run 'terradesk login' first")
		}

		ctx := cmd.Context()
		health, err := deps.Client.Health(ctx)
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}

		log.Info("Draining system logs...")
		logs, err := drainList(ctx, deps.Client.ListLogs)
		if err != nil {
			return fmt.Errorf("export logs: %w", err)
		}
		log.Info("Draining audit trail...")
		audit, err := drainList(ctx, deps.Client.ListAudit)
		if err != nil {
			return fmt.Errorf("export audit trail: %w", err)
		}

		data := exportData{
			ExportedAt: time.Now().UTC(),
			Version:    version,
			Server:     health,
			Logs:       logs,
			Audit:      audit,
		}
		if err := writeCompressedExport(outputFile, &data); err != nil {
			return err
		}
		log.Infof("Wrote %d log entries and %d audit entries to %s", len(logs), len(audit), outputFile)
		return nil
	},
}

// drainList pulls every page from a list endpoint, oldest first so the file
// reads chronologically.
func drainList[T any](ctx context.Context, fetch func(context.Context, api.Page) (api.List[T], error)) ([]T, error) {
	var out []T
	for page := 0; ; page++ {
		res, err := fetch(ctx, api.Page{
			Page:  page,
			Limit: exportPageSize,
			Sort:  "timestamp",
			Order: "asc",
		})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if len(res.Items) < exportPageSize || len(out) >= res.Total {
			return out, nil
		}
	}
}

// writeCompressedExport streams the JSON encoding through a zstd writer for
// memory efficiency.
func writeCompressedExport(filename string, data *exportData) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdWriter, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	defer func() { _ = zstdWriter.Close() }()

	encoder := json.NewEncoder(zstdWriter)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}

	return zstdWriter.Close()
}
