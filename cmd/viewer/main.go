// Command viewer dumps the messenger store as a table, read-only. With
// -serve it also exposes the HTML inspector while the messenger keeps
// running, thanks to Badger's lock-guard bypass.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"messenger-lab/internal"
)

func main() {
	dbPath := flag.String("db", "messenger.db", "path to the badger store")
	prefix := flag.String("prefix", "user:", "key prefix to scan (user:, msg:, session:, pref:)")
	serve := flag.Int("serve", 0, "serve the HTML inspector on this port instead of printing")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	if *serve > 0 {
		stats := func() map[string]any {
			return map[string]any{
				"Mode": "Viewer (read-only)",
				"Time": time.Now().Format(time.RFC822),
			}
		}
		internal.StartDebugServer(db, *serve, "/inspect", internal.StoreMapper, stats)
		fmt.Printf("viewer started at http://localhost:%d/inspect\n", *serve)
		select {}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Timestamp", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				row := internal.StoreMapper(string(item.Key()), v)
				table.Append([]string{row.Key, row.Kind, row.Timestamp, row.Detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}
