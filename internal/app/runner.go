package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/samvad-hq/erechnung-extract/internal/config"
	"github.com/samvad-hq/erechnung-extract/internal/extraction"
	"github.com/samvad-hq/erechnung-extract/internal/logger"
	"github.com/samvad-hq/erechnung-extract/internal/storage"
	"github.com/samvad-hq/erechnung-extract/pkg/httpclient"
	"github.com/samvad-hq/erechnung-extract/pkg/publishers"
)

var (
	// ErrUnhealthy is returned when the health probe does not answer 200.
	ErrUnhealthy = errors.New("api is not healthy")
	// ErrFileNotFound is returned when the input document does not exist.
	ErrFileNotFound = errors.New("input file does not exist")
)

// Invocation carries the inputs of one command run.
type Invocation struct {
	BaseURL string
	PDFPath string
	Program string
}

// Runner executes the health-check, extract and save flow and owns the
// optional history store and notification publishers.
type Runner struct {
	client    *extraction.Client
	store     storage.Store
	fanout    *publishers.Fanout
	out       io.Writer
	outputDir string
	log       logger.Logger
}

// NewRunner builds a runner from config. Transcript lines are written to out.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanup,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanup.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	return &Runner{
		client:    extraction.NewClient(httpclient.NewRestyClient(cfg.RequestTimeout)),
		store:     store,
		fanout:    fanout,
		out:       out,
		outputDir: cfg.OutputDir,
		log:       log,
	}, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return publishers.NewFanout(nil), nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{"id": pubCfg.ID, "type": pubCfg.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Close releases the history store and publishers.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.fanout.Close(), r.store.Close())
}

// Run checks health, then extracts and saves XML for inv.PDFPath when one is given.
// Transport errors are returned as-is; ErrUnhealthy and ErrFileNotFound mark the
// application-level failures.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("runner is not initialized")
	}

	fmt.Fprintln(r.out, "Checking API health...")
	health, err := r.client.CheckHealth(ctx, inv.BaseURL)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if err := r.printResponse("Health check", health); err != nil {
		return err
	}

	if !health.OK() {
		r.log.ErrorObj("health check failed", "health", map[string]any{
			"base_url":    inv.BaseURL,
			"status_code": health.StatusCode,
			"summary":     extraction.Summarize(health.Body),
		})
		fmt.Fprintln(r.out, "API is not healthy. Please start the server first.")
		return fmt.Errorf("%w: status %d", ErrUnhealthy, health.StatusCode)
	}

	if inv.PDFPath == "" {
		r.printUsage(inv.Program)
		return nil
	}

	if _, err := os.Stat(inv.PDFPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(r.out, "Error: File %s does not exist\n", inv.PDFPath)
		return fmt.Errorf("%w: %s", ErrFileNotFound, inv.PDFPath)
	}

	doc, err := extraction.Inspect(inv.PDFPath)
	if err != nil {
		return fmt.Errorf("inspect document: %w", err)
	}
	r.noteDocument(doc)

	fmt.Fprintf(r.out, "\nExtracting XML from %s...\n", inv.PDFPath)
	result, err := r.client.ExtractXML(ctx, inv.BaseURL, inv.PDFPath)
	if err != nil {
		return fmt.Errorf("extract xml: %w", err)
	}
	if err := r.printResponse("Result", result); err != nil {
		return err
	}

	if !result.OK() {
		r.log.WarnObj("extraction rejected", "extraction_error", map[string]any{
			"document":    doc.Name,
			"status_code": result.StatusCode,
			"summary":     extraction.Summarize(result.Body),
		})
	}

	path, saved, err := extraction.PersistIfPresent(result, r.outputDir)
	if err != nil {
		return fmt.Errorf("save xml: %w", err)
	}
	if !saved {
		if result.HasXMLContentKey() {
			r.log.WarnObj("xml_content is not a string; nothing saved", "document", doc.Name)
		}
		return nil
	}
	fmt.Fprintf(r.out, "\nXML content saved to: %s\n", path)

	r.recordExtraction(ctx, doc, result, path)
	return nil
}

// noteDocument logs advisory facts about the upload before it is sent.
func (r *Runner) noteDocument(doc extraction.Document) {
	if !doc.LooksLikePDF {
		r.log.WarnObj("document does not start with a PDF header", "document", map[string]any{
			"path": doc.Path,
			"size": doc.Size,
		})
	}

	prev, found, err := r.store.Lookup(doc.SHA256)
	if err != nil {
		r.log.WarnObj("history lookup failed", "error", err)
		return
	}
	if found {
		r.log.InfoObj("document previously extracted", "history_entry", prev)
	}
}

// recordExtraction stores history and notifies publishers. Failures are logged only.
func (r *Runner) recordExtraction(ctx context.Context, doc extraction.Document, result extraction.APIResponse, path string) {
	res, _ := result.Extraction()

	if err := r.store.Record(storage.Entry{
		DocumentSHA256: doc.SHA256,
		DocumentName:   doc.Name,
		XMLFilename:    res.XMLFilename,
		OutputPath:     path,
		FileStatus:     res.FileStatus,
	}); err != nil {
		r.log.WarnObj("history record failed", "error", err)
	}

	if r.fanout.Size() == 0 {
		return
	}
	evt := publishers.NewExtractedEvent(doc.Name, doc.SHA256, result.StatusCode, res.FileStatus, res.XMLFilename, path)
	delivered, err := r.fanout.Publish(ctx, evt)
	if err != nil {
		r.log.ErrorObj("extraction event delivery failed", "publish_error", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	r.log.DebugObj("extraction event delivered", "publish_result", map[string]any{"delivered": delivered})
}

func (r *Runner) printResponse(label string, resp extraction.APIResponse) error {
	enc := json.NewEncoder(r.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	fmt.Fprintf(r.out, "%s: ", label)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("print %s: %w", label, err)
	}
	return nil
}

func (r *Runner) printUsage(program string) {
	if program == "" {
		program = "erechnung-extract"
	}
	fmt.Fprintf(r.out, "\nUsage: %s <path_to_pdf_file>\n", program)
	fmt.Fprintf(r.out, "Example: %s invoice.pdf\n", program)
}

// ExitCode maps a Run result to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
