// Package ingest imports consumption records from OFX/QFX statement files.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
)

// Purchase is one statement transaction reduced to what the consumption
// ledger needs.
type Purchase struct {
	PostedAt  time.Time
	StoreName string
	Amount    float64
}

// Parser reads OFX/QFX statement files.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocess fixes common formatting issues in OFX files before parsing:
// mixed-case SEVERITY values and SGML tags missing their closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file into purchases. Bank and credit card
// statements are both read; a statement that fails to convert is logged and
// skipped so the rest of the file still imports.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Purchase, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var purchases []Purchase
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, tx := range stmt.BankTranList.Transactions {
				if purchase, ok := convertTransaction(tx); ok {
					purchases = append(purchases, purchase)
				}
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			for _, tx := range stmt.BankTranList.Transactions {
				if purchase, ok := convertTransaction(tx); ok {
					purchases = append(purchases, purchase)
				}
			}
		}
	}

	slog.Info("parsed OFX file",
		"purchases", len(purchases),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return purchases, nil
}

// convertTransaction maps an OFX transaction to a purchase. Zero-amount
// entries are dropped; debits come through as positive amounts.
func convertTransaction(tx ofxgo.Transaction) (Purchase, bool) {
	amount, _ := tx.TrnAmt.Float64()
	if amount < 0 {
		amount = -amount
	}
	if amount == 0 {
		return Purchase{}, false
	}

	name := extractStoreName(tx)
	if name == "" {
		return Purchase{}, false
	}

	return Purchase{
		PostedAt:  tx.DtPosted.Time,
		StoreName: name,
		Amount:    amount,
	}, true
}

// extractStoreName pulls the cleanest available merchant name from an OFX
// transaction. PAYEE wins when present; otherwise NAME, with MEMO as a
// fallback for generic descriptions.
func extractStoreName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date patterns.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic to use as
// a store name.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
