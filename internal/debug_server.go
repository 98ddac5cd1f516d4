package internal

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	defaultPrefix = "chat:"
	maxRows       = 500
)

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Chat      string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() any

type PageData struct {
	Prefix    string
	Prefixes  []string
	Items     []InspectRow
	Truncated bool
	Stats     template.JS
}

// DebugServer exposes the raw content of BadgerDB and the live health of the server.
// It is meant for local development only.
type DebugServer struct {
	log    *slog.Logger
	server *http.Server
}

func NewDebugServer(log *slog.Logger, db *badger.DB, port int,
	prefixes []string, mapper RowMapper, statsProvider StatsProvider) *DebugServer {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	if mapper == nil {
		mapper = DefaultMapper
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		data := PageData{Prefix: prefix, Prefixes: prefixes}
		if statsProvider != nil {
			if stats, err := json.MarshalIndent(statsProvider(), "", "  "); err == nil {
				data.Stats = template.JS(stats)
			}
		}

		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				if len(data.Items) == maxRows {
					data.Truncated = true
					return nil
				}
				item := it.Item()
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Warn("Failed to render inspect page", "error", err)
		}
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var stats any
		if statsProvider != nil {
			stats = statsProvider()
		}
		_ = json.NewEncoder(w).Encode(stats)
	})

	return &DebugServer{
		log: log,
		server: &http.Server{
			Addr:              fmt.Sprintf("localhost:%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (d *DebugServer) Handler() http.Handler {
	return d.server.Handler
}

// Start serves in the background until Shutdown is called.
func (d *DebugServer) Start() {
	go func() {
		d.log.Info("Starting debug server", "address", "http://"+d.server.Addr+"/inspect")
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.log.Error("Debug server stopped", "error", err)
		}
	}()
}

func (d *DebugServer) Shutdown(ctx context.Context) error {
	return d.server.Shutdown(ctx)
}

// DefaultMapper shows the key and the size of the value only.
func DefaultMapper(key string, val []byte) InspectRow {
	return InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    fmt.Sprintf("Size: %d bytes", len(val)),
	}
}
