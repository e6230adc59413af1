package legacy

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// Export renders records to path, creating its directory. path must not
// be the legacy source itself; callers pass a separate export target.
func Export(fs afero.Fs, path string, records []model.Project) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(Render(records)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Render writes records as a SchemaV1 script in the given order.
func Render(records []model.Project) string {
	var b strings.Builder
	b.WriteString("// Generated by contentmgr from admin data.\n")
	b.WriteString("const projectData = {\n")
	for i, p := range records {
		fmt.Fprintf(&b, "    %s: {\n", p.ID)
		fmt.Fprintf(&b, "        title: %s,\n", quote(p.Title))
		fmt.Fprintf(&b, "        subtitle: %s,\n", quote(p.Subtitle))
		fmt.Fprintf(&b, "        description: %s,\n", quote(p.Description))
		fmt.Fprintf(&b, "        folder: %s,\n", quote(folderOrID(p.Folder, p.ID)))
		fmt.Fprintf(&b, "        images: [%s]\n", quoteList(p.Images))
		b.WriteString("    }")
		if i < len(records)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("};\n")
	return b.String()
}

// quote renders s as a JavaScript string literal. JSON string syntax is a
// subset of JavaScript's.
func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return strings.Join(quoted, ", ")
}
