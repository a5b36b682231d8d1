package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Kind      string
	Timestamp string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves a read-only HTML view over the store, filtered by
// a key prefix. Meant for local debugging only; it binds without auth.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = StoreMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "user:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

// StoreMapper renders the messenger key families: user:, msg:, session:
// and pref:.
func StoreMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Kind:      "RAW",
		Timestamp: "--:--:--",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch {
	case strings.HasPrefix(key, "user:"):
		row.Kind = "USER"
		var record struct {
			LastSeen int64 `json:"lastSeen"`
		}
		if err := json.Unmarshal(val, &record); err == nil {
			row.Timestamp = time.UnixMilli(record.LastSeen).Format("15:04:05")
		}
		row.Detail = strings.TrimPrefix(key, "user:")

	case strings.HasPrefix(key, "msg:"):
		row.Kind = "MESSAGE"
		var record struct {
			Sender string `json:"sender"`
			Text   string `json:"text"`
			At     int64  `json:"at"`
		}
		if err := json.Unmarshal(val, &record); err == nil {
			row.Timestamp = time.Unix(0, record.At).Format("15:04:05")
			row.Detail = record.Sender + ": " + record.Text
		}

	case strings.HasPrefix(key, "session:"):
		row.Kind = "SESSION"
		var record struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(val, &record); err == nil {
			row.Detail = record.Username
		}

	case strings.HasPrefix(key, "pref:"):
		row.Kind = "PREF"
		row.Detail = string(val)
	}

	return row
}
