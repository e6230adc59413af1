// Package legacy reads and writes the projectData object literal embedded
// in the site's generated script.js.
package legacy

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// SchemaV1 is the `const projectData = { projectN: {...} };` layout.
const SchemaV1 = 1

// Kind tags the outcome of reading a legacy script.
type Kind int

const (
	// Empty means there was nothing to read: no file, no literal, or a
	// literal without projectN entries.
	Empty Kind = iota
	// Parsed means records were recovered.
	Parsed
	// Malformed means a literal was found but could not be read.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Parsed:
		return "parsed"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Method records how a Parsed result was obtained.
type Method string

const (
	MethodEval   Method = "eval"
	MethodScrape Method = "scrape"
)

// Result is the tagged outcome of Read or Parse. Records is non-nil only
// when Kind is Parsed; Err is set only when Kind is Malformed.
type Result struct {
	Kind    Kind
	Version int
	Method  Method
	Records map[string]model.Project
	Err     error
}

// evalTimeout bounds evaluation of the embedded literal.
const evalTimeout = 2 * time.Second

var (
	declPattern    = regexp.MustCompile(`(?:const|let|var)\s+projectData\s*=\s*\{`)
	projectPattern = regexp.MustCompile(`(?s)(project\d+):\s*\{([^}]+)\}`)
	fieldPatterns  = map[string]*regexp.Regexp{
		"title":       regexp.MustCompile(`\btitle:\s*["']([^"']+)["']`),
		"subtitle":    regexp.MustCompile(`\bsubtitle:\s*["']([^"']+)["']`),
		"description": regexp.MustCompile(`\bdescription:\s*["']([^"']+)["']`),
		"folder":      regexp.MustCompile(`\bfolder:\s*["']([^"']+)["']`),
	}
)

// Read loads and parses the script at path. A missing file is Empty;
// any other read failure is Malformed.
func Read(fs afero.Fs, path string) Result {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Kind: Empty}
		}
		return Result{Kind: Malformed, Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return Parse(string(data))
}

// Parse recovers project records from script source. The literal is
// evaluated in a JavaScript VM; when that fails each projectN entry is
// scraped with regular expressions instead. Only text fields are kept:
// images in the legacy literal are ignored. A literal that evaluates but
// holds no projectN entries is Empty.
func Parse(src string) Result {
	loc := declPattern.FindStringIndex(src)
	if loc == nil {
		return Result{Kind: Empty}
	}
	start := loc[1] - 1

	literal, ok := objectLiteral(src, start)
	if !ok {
		// Unterminated: let the scraper salvage what it can.
		if scraped := scrape(src[start:]); len(scraped) > 0 {
			return Result{Kind: Parsed, Version: SchemaV1, Method: MethodScrape, Records: scraped}
		}
		return Result{Kind: Malformed, Err: errors.New("reading projectData: unterminated object literal")}
	}

	records, evalErr := evaluate(literal)
	if evalErr == nil {
		if len(records) == 0 {
			return Result{Kind: Empty}
		}
		return Result{Kind: Parsed, Version: SchemaV1, Method: MethodEval, Records: records}
	}

	if scraped := scrape(literal); len(scraped) > 0 {
		return Result{Kind: Parsed, Version: SchemaV1, Method: MethodScrape, Records: scraped}
	}
	return Result{Kind: Malformed, Err: fmt.Errorf("reading projectData: %w", evalErr)}
}

// objectLiteral returns the brace-balanced text starting at src[start],
// which must be '{'. Braces inside string literals and comments do not
// count. The boolean is false when the literal never closes.
func objectLiteral(src string, start int) (string, bool) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start : i+1], true
			}
		case '"', '\'', '`':
			i = skipString(src, i)
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				i = indexFrom(src, i+2, "\n")
			} else if i+1 < len(src) && src[i+1] == '*' {
				i = indexFrom(src, i+2, "*/") + 1
			}
		}
	}
	return "", false
}

// skipString returns the index of the quote closing the string that opens
// at src[i], or len(src) when it never closes.
func skipString(src string, i int) int {
	quote := src[i]
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(src)
}

func indexFrom(src string, from int, sep string) int {
	if from > len(src) {
		return len(src)
	}
	if n := strings.Index(src[from:], sep); n >= 0 {
		return from + n
	}
	return len(src)
}

func evaluate(literal string) (map[string]model.Project, error) {
	vm := goja.New()
	timer := time.AfterFunc(evalTimeout, func() {
		vm.Interrupt("projectData evaluation timed out")
	})
	defer timer.Stop()

	v, err := vm.RunString("(" + literal + ")")
	if err != nil {
		return nil, fmt.Errorf("evaluating literal: %w", err)
	}

	obj, ok := v.Export().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("projectData is %T, not an object", v.Export())
	}

	records := make(map[string]model.Project, len(obj))
	for id, raw := range obj {
		if _, ok := model.ProjectNumber(id); !ok {
			continue
		}
		fields, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		records[id] = model.Project{
			ID:          id,
			Title:       stringField(fields, "title"),
			Subtitle:    stringField(fields, "subtitle"),
			Description: stringField(fields, "description"),
			Folder:      folderOrID(stringField(fields, "folder"), id),
		}
	}
	return records, nil
}

func scrape(literal string) map[string]model.Project {
	matches := projectPattern.FindAllStringSubmatch(literal, -1)
	if len(matches) == 0 {
		return nil
	}

	records := make(map[string]model.Project, len(matches))
	for _, match := range matches {
		id, body := match[1], match[2]
		records[id] = model.Project{
			ID:          id,
			Title:       scrapeField(body, "title"),
			Subtitle:    scrapeField(body, "subtitle"),
			Description: scrapeField(body, "description"),
			Folder:      folderOrID(scrapeField(body, "folder"), id),
		}
	}
	return records
}

func scrapeField(body, name string) string {
	m := fieldPatterns[name].FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}

func folderOrID(folder, id string) string {
	if folder == "" {
		return id
	}
	return folder
}
