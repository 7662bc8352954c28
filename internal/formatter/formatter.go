// package formatter provides functions to export user records to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sablecliff/accountd/internal/models"
)

// timeLayout is the timestamp format used in exports.
const timeLayout = time.RFC3339

// ExportToCSV converts user records to CSV with columns:
// ID, Email, Alias, CustomerID, SubscriptionID, Status, CreatedAt, UpdatedAt
func ExportToCSV(users []*models.User) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Email", "Alias", "CustomerID", "SubscriptionID", "Status", "CreatedAt", "UpdatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, user := range users {
		record := []string{
			strconv.FormatInt(user.ID, 10),
			user.Email,
			orEmpty(user.AliasUsername),
			orEmpty(user.ExternalCustomerID),
			orEmpty(user.ExternalSubscriptionID),
			orEmpty(user.SubscriptionStatus),
			user.CreatedAt.Format(timeLayout),
			user.UpdatedAt.Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts user records to a Markdown table
func ExportToMarkdown(users []*models.User) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Users\n\n")
	buf.WriteString(fmt.Sprintf("**Count**: %d\n\n", len(users)))
	buf.WriteString("| ID | Email | Alias | Customer | Subscription | Status |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")

	for _, user := range users {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			user.ID,
			user.Email,
			orDash(user.AliasUsername),
			orDash(user.ExternalCustomerID),
			orDash(user.ExternalSubscriptionID),
			orDash(user.SubscriptionStatus),
		))
	}

	return buf.Bytes()
}

// ExportToText converts user records to plain text, one user per line
func ExportToText(users []*models.User) []byte {
	var buf bytes.Buffer

	for i, user := range users {
		buf.WriteString(fmt.Sprintf("%d. #%d %s", i+1, user.ID, user.Email))
		if user.AliasUsername.Valid {
			buf.WriteString(fmt.Sprintf(" (%s)", user.AliasUsername.String))
		}
		if user.HasBilling() {
			buf.WriteString(fmt.Sprintf(" [%s: %s]", user.ExternalCustomerID.String, orDash(user.SubscriptionStatus)))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// WriteToFile writes exported content to the given path
func WriteToFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func orEmpty(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func orDash(ns sql.NullString) string {
	if !ns.Valid {
		return "-"
	}
	return ns.String
}
