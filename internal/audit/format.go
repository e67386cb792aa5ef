package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Write prints the result as text or, when format is "json", as indented JSON.
func Write(w io.Writer, res *Result, root, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if _, err := fmt.Fprintf(w, "Auditing output in: %s\n%s\n", root, strings.Repeat("━", 60)); err != nil {
		return err
	}
	for _, is := range res.Issues {
		if _, err := fmt.Fprintf(w, "%s: %s [%s]\n  %s\n", is.Level, is.FilePath, is.Rule, is.Message); err != nil {
			return err
		}
	}
	errs := res.ErrorCount()
	warns := len(res.Issues) - errs
	if _, err := fmt.Fprintf(w, "%s\n  %d files scanned\n  %d error%s, %d warning%s\n",
		strings.Repeat("━", 60), res.FilesTotal, errs, pluralize(errs), warns, pluralize(warns)); err != nil {
		return err
	}
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
