package legacy

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

const siteScript = `
document.addEventListener('DOMContentLoaded', () => initGrid());

const projectData = {
    project1: {
        title: 'Rust Belt',
        subtitle: "Steel, 2019",
        description: 'Large-scale welded steel installation.',
        folder: 'rust-belt',
        images: ['rust-belt-1.jpg', 'rust-belt-2.jpg']
    },
    project2: {
        title: "Tidewater",
        description: "Driftwood and cable."
    }
};

function initGrid() {
    Object.keys(projectData).forEach(renderTile);
}
`

func TestParse_Eval(t *testing.T) {
	res := Parse(siteScript)

	require.Equal(t, Parsed, res.Kind, "err: %v", res.Err)
	assert.Equal(t, SchemaV1, res.Version)
	assert.Equal(t, MethodEval, res.Method)
	require.Len(t, res.Records, 2)

	assert.Equal(t, model.Project{
		ID:          "project1",
		Title:       "Rust Belt",
		Subtitle:    "Steel, 2019",
		Description: "Large-scale welded steel installation.",
		Folder:      "rust-belt",
	}, res.Records["project1"])

	p2 := res.Records["project2"]
	assert.Equal(t, "Tidewater", p2.Title)
	assert.Empty(t, p2.Subtitle)
	assert.Equal(t, "project2", p2.Folder, "folder defaults to id")
	assert.Nil(t, p2.Images, "legacy images are not imported")
}

func TestParse_ScrapeFallback(t *testing.T) {
	// siteTitle is undefined, so evaluation fails and the scraper runs.
	src := `const projectData = {
    project4: { title: siteTitle + " one", subtitle: 'Bronze' },
    project5: { title: "Second", description: "Plaster cast" }
};`

	res := Parse(src)

	require.Equal(t, Parsed, res.Kind)
	assert.Equal(t, MethodScrape, res.Method)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Bronze", res.Records["project4"].Subtitle)
	assert.Empty(t, res.Records["project4"].Title)
	assert.Equal(t, "Plaster cast", res.Records["project5"].Description)
}

func TestParse_Empty(t *testing.T) {
	res := Parse("const other = { a: 1 };")
	assert.Equal(t, Empty, res.Kind)
	assert.Nil(t, res.Records)
	assert.NoError(t, res.Err)
}

func TestParse_EmptyLiteral(t *testing.T) {
	for name, src := range map[string]string{
		"no entries":      "const projectData = {};",
		"other keys":      `const projectData = { version: 2 };`,
		"spread on lines": "const projectData = {\n};\nfunction init() {}\n",
	} {
		t.Run(name, func(t *testing.T) {
			res := Parse(src)
			assert.Equal(t, Empty, res.Kind)
			assert.NoError(t, res.Err)
		})
	}
}

func TestParse_BracesInsideStrings(t *testing.T) {
	src := `const projectData = {
    // closing }; in a comment
    project7: {
        title: "Brace } yourself",
        description: 'Ends with }; and { opens',
        subtitle: "Say \"};\" twice"
    }
};
const after = { project9: { title: "not data" } };`

	res := Parse(src)

	require.Equal(t, Parsed, res.Kind, "err: %v", res.Err)
	assert.Equal(t, MethodEval, res.Method)
	require.Len(t, res.Records, 1)
	p := res.Records["project7"]
	assert.Equal(t, "Brace } yourself", p.Title)
	assert.Equal(t, "Ends with }; and { opens", p.Description)
	assert.Equal(t, `Say "};" twice`, p.Subtitle)
}

func TestParse_Unterminated(t *testing.T) {
	t.Run("scraper salvages entries", func(t *testing.T) {
		res := Parse(`const projectData = {
    project3: { title: "Kept", description: "Still here" },
    project4: { title: "Cut`)
		require.Equal(t, Parsed, res.Kind)
		assert.Equal(t, MethodScrape, res.Method)
		assert.Equal(t, "Kept", res.Records["project3"].Title)
	})

	t.Run("nothing to salvage", func(t *testing.T) {
		res := Parse(`const projectData = { project3: `)
		assert.Equal(t, Malformed, res.Kind)
		assert.Error(t, res.Err)
	})
}

func TestParse_Malformed(t *testing.T) {
	res := Parse("const projectData = { nothing: here };")
	assert.Equal(t, Malformed, res.Kind)
	assert.Error(t, res.Err)
	assert.Nil(t, res.Records)
}

func TestRead(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("missing file is empty", func(t *testing.T) {
		res := Read(fs, "/site/script.js")
		assert.Equal(t, Empty, res.Kind)
	})

	t.Run("reads from the filesystem", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/site/script.js", []byte(siteScript), 0o644))
		res := Read(fs, "/site/script.js")
		assert.Equal(t, Parsed, res.Kind)
		assert.Len(t, res.Records, 2)
	})
}

func TestRender_ParsesBack(t *testing.T) {
	records := []model.Project{
		{
			ID:          "project16",
			Title:       `Quote "marks" & ampersands`,
			Subtitle:    "Mixed media",
			Description: "Line one\nline two",
			Folder:      "project16",
			Images:      []string{"project16-1.png", "project16-2.jpg"},
		},
		{ID: "project17", Title: "Second", Description: "Body"},
		{ID: "project18", Title: "Braces }; {", Subtitle: "a };", Description: "// not a comment }"},
	}

	out := Render(records)
	res := Parse(out)

	require.Equal(t, Parsed, res.Kind, "err: %v", res.Err)
	assert.Equal(t, MethodEval, res.Method)
	require.Len(t, res.Records, 3)
	assert.Equal(t, records[0].Title, res.Records["project16"].Title)
	assert.Equal(t, records[0].Description, res.Records["project16"].Description)
	assert.Equal(t, "project17", res.Records["project17"].Folder)
	assert.Equal(t, records[2].Title, res.Records["project18"].Title)
	assert.Equal(t, records[2].Subtitle, res.Records["project18"].Subtitle)
	assert.Equal(t, records[2].Description, res.Records["project18"].Description)
	assert.Contains(t, out, `images: ["project16-1.png", "project16-2.jpg"]`)
}

func TestExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	records := []model.Project{{ID: "project3", Title: "Harbor", Description: "Bronze"}}

	require.NoError(t, Export(fs, "/site/admin_data/projectData.js", records))

	res := Read(fs, "/site/admin_data/projectData.js")
	require.Equal(t, Parsed, res.Kind)
	assert.Equal(t, "Harbor", res.Records["project3"].Title)
}
