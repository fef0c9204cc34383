// Command viewer prints the raw persisted state (documents, changes,
// sessions) as a table. Read-only: it can run next to a live server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"codraft/repositories"
)

func main() {
	dbPath := flag.String("db", "/tmp/codraft/badger", "Path to badger DB")
	prefix := flag.String("prefix", "doc:", "Prefix to scan (doc:, chg:, ses:, usr:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Detail"})
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

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				count++
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

	color.Green.Printf("Scanned prefix %q: %d entries\n\n", *prefix, count)
	table.Render()
}

func toRow(key string, val []byte) []string {
	switch {
	case strings.HasPrefix(key, "doc:"):
		var doc repositories.DiskDocument
		if err := json.Unmarshal(val, &doc); err != nil {
			return errorRow(key, err)
		}
		return []string{key, "DOC", doc.UpdatedAt.Format("15:04:05"), shorten(doc.ID),
			fmt.Sprintf("v%d, %d bytes", doc.Version, len(doc.Content))}
	case strings.HasPrefix(key, "chg:"):
		var chg repositories.DiskChange
		if err := json.Unmarshal(val, &chg); err != nil {
			return errorRow(key, err)
		}
		return []string{key, "CHANGE", chg.At.Format("15:04:05"), shorten(chg.DocumentID),
			fmt.Sprintf("%s by %s", chg.Kind, chg.Actor)}
	case strings.HasPrefix(key, "ses:"):
		var ses repositories.DiskSession
		if err := json.Unmarshal(val, &ses); err != nil {
			return errorRow(key, err)
		}
		names := lo.Map(ses.Participants, func(p repositories.DiskParticipant, _ int) string {
			if p.Active {
				return p.UserName
			}
			return p.UserName + " (inactive)"
		})
		return []string{key, "SESSION", ses.CreatedAt.Format("15:04:05"), shorten(ses.SessionID),
			strings.Join(names, ", ")}
	case strings.HasPrefix(key, "usr:"):
		var user repositories.User
		if err := json.Unmarshal(val, &user); err != nil {
			return errorRow(key, err)
		}
		return []string{key, "USER", user.CreatedAt.Format("15:04:05"), shorten(user.ID),
			user.Email}
	default:
		return []string{key, "RAW", "--:--:--", "--------", fmt.Sprintf("%d bytes", len(val))}
	}
}

func errorRow(key string, err error) []string {
	color.Red.Printf("Unreadable entry %s: %v\n", key, err)
	return []string{key, "ERROR", "--:--:--", "--------", err.Error()}
}

func shorten(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
