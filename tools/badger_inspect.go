package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"whatsapp-clone/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// Chats by default, "member:" only holds the participant index
	prefix := flag.String("prefix", "chat:", "Prefix to scan (chat:, member:, msg:, user:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Chat", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
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
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				entry := repositories.Describe(rawKey, v)

				at := "--:--:--"
				if !entry.At.IsZero() {
					at = entry.At.Format("15:04:05")
				}
				// Only the first 8 characters of message ids are readable enough
				displayID := entry.ID
				if entry.Kind == "MESSAGE" && len(displayID) > 8 {
					displayID = displayID[:8]
				}

				table.Append([]string{
					rawKey,
					entry.Kind,
					at,
					displayID,
					entry.Chat,
					entry.Detail,
				})
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

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A database left open by a crashed server needs a write open to truncate its log
		if strings.Contains(err.Error(), "Log truncate required") {
			fmt.Println("Truncating the value log before reading")

			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
