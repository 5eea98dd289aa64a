package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leasingborsen/pricelist-cli/internal/hybrid"
	"github.com/leasingborsen/pricelist-cli/internal/model"
)

var (
	batchDir         string
	batchOutDir      string
	batchDealer      string
	batchLimit       int
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract offers from every price list in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		files, err := listDocuments(batchDir)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentDocuments
		}

		return processBatch(ctx, files, batchLimit, concurrency, env.orch)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of price-list text files")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "directory for outcome JSON files (default alongside inputs)")
	batchCmd.Flags().StringVar(&batchDealer, "dealer", "", "dealer or brand hint applied to every document")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of documents to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent documents (default from config)")
	batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}

// listDocuments returns the .txt files directly under dir, sorted.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read dir %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// processBatch runs extraction over the files concurrently. Individual
// failures are logged and counted, not fatal; the governor serializes
// budget decisions across workers.
func processBatch(ctx context.Context, files []string, limit, concurrency int, orch *hybrid.Orchestrator) error {
	if len(files) == 0 {
		zap.L().Info("no documents found")
		return nil
	}

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("documents", len(files)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, file := range files {
		g.Go(func() error {
			log := zap.L().With(zap.String("file", file))

			text, err := os.ReadFile(file)
			if err != nil {
				failed.Add(1)
				log.Error("read failed", zap.Error(err))
				return nil
			}

			outcome, err := orch.Extract(gctx, model.Document{
				Text:       string(text),
				DealerHint: batchDealer,
			})
			if err != nil {
				failed.Add(1)
				log.Error("extraction failed", zap.Error(err))
				return nil // don't abort the batch on individual failure
			}

			if err := writeOutcome(outcome, outcomePath(file)); err != nil {
				failed.Add(1)
				log.Error("write failed", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			log.Info("extraction complete",
				zap.String("method", string(outcome.MethodUsed)),
				zap.Int("variants", len(outcome.Variants)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// outcomePath maps an input file to its outcome JSON path, honoring
// --out-dir when set.
func outcomePath(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), ".txt") + ".json"
	if batchOutDir != "" {
		return filepath.Join(batchOutDir, name)
	}
	return filepath.Join(filepath.Dir(file), name)
}
