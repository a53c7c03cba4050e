package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"redplanet.games/internal/sim/economy"
)

//go:embed data/*.json
var embedded embed.FS

type Catalogs struct {
	Projects ProjectCatalog
	Corps    CorpCatalog
}

type ProjectCatalog struct {
	ByID   map[int]ProjectDef
	IDs    []int
	Digest string
}

type CorpCatalog struct {
	ByID   map[int]CorpDef
	IDs    []int
	Digest string
}

// Default loads the catalogue compiled into the binary.
func Default() (*Catalogs, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads projects.json and corps.json from configDir; the schemas
// always come from the embedded copy.
func LoadDir(configDir string) (*Catalogs, error) {
	return Load(os.DirFS(configDir))
}

func Load(fsys fs.FS) (*Catalogs, error) {
	var c Catalogs
	if err := loadProjects(fsys, &c.Projects); err != nil {
		return nil, err
	}
	if err := loadCorps(fsys, &c.Corps); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	b, err := embedded.ReadFile("data/" + name)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return c.Compile(name)
}

// readValidated reads file from fsys and checks it against schemaName.
func readValidated(fsys fs.FS, file, schemaName string) ([]byte, error) {
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}
	schema, err := compileSchema(schemaName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", schemaName, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return raw, nil
}

func loadProjects(fsys fs.FS, out *ProjectCatalog) error {
	raw, err := readValidated(fsys, "projects.json", "project.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ProjectDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("projects.json: %w", err)
	}
	out.ByID = make(map[int]ProjectDef, len(defs))
	for _, d := range defs {
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("projects.json: duplicate id %d", d.ID)
		}
		if d.Type == TypeActive && d.Subtype == "" {
			return fmt.Errorf("projects.json: active project %d without subtype", d.ID)
		}
		if d.Type != TypeActive && (d.Subtype != "" || len(d.InitialResources) > 0) {
			return fmt.Errorf("projects.json: project %d carries active-only fields", d.ID)
		}
		out.ByID[d.ID] = d
		out.IDs = append(out.IDs, d.ID)
	}
	sort.Ints(out.IDs)
	return nil
}

func loadCorps(fsys fs.FS, out *CorpCatalog) error {
	raw, err := readValidated(fsys, "corps.json", "corp.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []CorpDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("corps.json: %w", err)
	}
	out.ByID = make(map[int]CorpDef, len(defs))
	for _, d := range defs {
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("corps.json: duplicate id %d", d.ID)
		}
		for r := range d.Start {
			if !r.Valid() {
				return fmt.Errorf("corps.json: corporation %d: unknown resource %q", d.ID, r)
			}
		}
		out.ByID[d.ID] = d
		out.IDs = append(out.IDs, d.ID)
	}
	sort.Ints(out.IDs)
	return nil
}

// StartingStock builds the ledgers a corporation begins with.
func (d CorpDef) StartingStock() economy.Stock {
	var s economy.Stock
	for r, l := range d.Start {
		if dst := s.Of(r); dst != nil {
			*dst = l
		}
	}
	return s
}
