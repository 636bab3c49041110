package dialect

import (
	"strconv"
	"strings"

	"github.com/johndauphine/sqldialect/internal/sqlfrag"
)

// AssembleSelect joins the request's clauses, one per line, without any limit.
func AssembleSelect(req LimitRequest) *sqlfrag.Fragment {
	return assemble(req.Select, req)
}

// AssembleSelectWith is AssembleSelect with a replacement select clause.
func AssembleSelectWith(sel *sqlfrag.Fragment, req LimitRequest) *sqlfrag.Fragment {
	return assemble(sel, req)
}

func assemble(sel *sqlfrag.Fragment, req LimitRequest) *sqlfrag.Fragment {
	sql := sqlfrag.New("")
	sql.AppendFragment(sel)
	appendLine(sql, req.From)
	appendLine(sql, req.Filter)
	if strings.TrimSpace(req.GroupBy) != "" {
		sql.Append("\n" + req.GroupBy)
	}
	if strings.TrimSpace(req.Order) != "" {
		sql.Append("\n" + req.Order)
	}
	return sql
}

func appendLine(sql, part *sqlfrag.Fragment) {
	if part == nil || part.IsEmpty() {
		return
	}
	sql.Append("\n")
	sql.AppendFragment(part)
}

// LimitOffset renders a trailing "LIMIT n [OFFSET m]" clause.
func LimitOffset(_ *Dialect, req LimitRequest) (*sqlfrag.Fragment, error) {
	sql := AssembleSelect(req)
	sql.Append("\nLIMIT " + strconv.Itoa(req.RowCount))
	if req.Offset > 0 {
		sql.Append(" OFFSET " + strconv.FormatInt(req.Offset, 10))
	}
	return sql, nil
}

// IndexKeyword finds the first standalone occurrence of keyword in sql,
// ignoring case and skipping quoted text. It returns -1 when absent.
func IndexKeyword(sql, keyword string) int {
	upper := strings.ToUpper(sql)
	kw := strings.ToUpper(keyword)
	var quote byte
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			continue
		case '[':
			quote = ']'
			continue
		}
		if !strings.HasPrefix(upper[i:], kw) {
			continue
		}
		if i > 0 && isWordByte(upper[i-1]) {
			continue
		}
		if end := i + len(kw); end < len(upper) && isWordByte(upper[end]) {
			continue
		}
		return i
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
