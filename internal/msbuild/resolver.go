package msbuild

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/renamekit/renamer/pkg/types"
)

// LoadError reports a project description that could not be loaded. It is
// the only failure mode crossing the resolver boundary; nothing panics past
// Load.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot load project %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot load project %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

var _ types.ProjectHandle = &Handle{}

// Handle is a loaded build-project description with its load timestamp.
// Handles never auto-revalidate; see Stale.
type Handle struct {
	path     string
	dir      string
	loadedAt time.Time

	props       properties
	sourceFiles []string
	references  []string
}

type properties struct {
	DefineConstants string
	DebugSymbols    string
	Optimize        string
	Tailcalls       string
	OtherFlags      string
	OutputPath      string
	AssemblyName    string
}

// XML shapes for the MSBuild-style project schema

type projectXML struct {
	XMLName        xml.Name        `xml:"Project"`
	PropertyGroups []propertyGroup `xml:"PropertyGroup"`
	ItemGroups     []itemGroup     `xml:"ItemGroup"`
}

type propertyGroup struct {
	DefineConstants string `xml:"DefineConstants"`
	DebugSymbols    string `xml:"DebugSymbols"`
	Optimize        string `xml:"Optimize"`
	Tailcalls       string `xml:"Tailcalls"`
	OtherFlags      string `xml:"OtherFlags"`
	OutputPath      string `xml:"OutputPath"`
	AssemblyName    string `xml:"AssemblyName"`
}

type itemGroup struct {
	Compiles          []includeItem   `xml:"Compile"`
	References        []referenceItem `xml:"Reference"`
	ProjectReferences []includeItem   `xml:"ProjectReference"`
}

type includeItem struct {
	Include string `xml:"Include,attr"`
}

type referenceItem struct {
	Include  string `xml:"Include,attr"`
	HintPath string `xml:"HintPath"`
}

// Load parses the project description at path. Every failure is reported as
// a *LoadError; callers treat it as "no project".
func Load(path string) (*Handle, error) {
	return load(path, map[string]bool{})
}

func load(path string, loading map[string]bool) (*Handle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot resolve path", Err: err}
	}

	if loading[abs] {
		return nil, &LoadError{Path: abs, Reason: "circular project reference"}
	}
	loading[abs] = true
	defer delete(loading, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &LoadError{Path: abs, Reason: "cannot read project file", Err: err}
	}

	var doc projectXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: abs, Reason: "malformed project file", Err: err}
	}

	h := &Handle{
		path:     abs,
		dir:      filepath.Dir(abs),
		loadedAt: time.Now(),
	}

	// MSBuild semantics: the last non-empty value of a property wins
	for _, pg := range doc.PropertyGroups {
		mergeProperty(&h.props.DefineConstants, pg.DefineConstants)
		mergeProperty(&h.props.DebugSymbols, pg.DebugSymbols)
		mergeProperty(&h.props.Optimize, pg.Optimize)
		mergeProperty(&h.props.Tailcalls, pg.Tailcalls)
		mergeProperty(&h.props.OtherFlags, pg.OtherFlags)
		mergeProperty(&h.props.OutputPath, pg.OutputPath)
		mergeProperty(&h.props.AssemblyName, pg.AssemblyName)
	}

	for _, ig := range doc.ItemGroups {
		for _, c := range ig.Compiles {
			if c.Include == "" {
				continue
			}
			h.sourceFiles = append(h.sourceFiles, h.resolve(c.Include))
		}
	}

	// Project references must resolve before assembly references: the
	// output assembly of a referenced project is only known once that
	// project's own metadata has been evaluated.
	for _, ig := range doc.ItemGroups {
		for _, pr := range ig.ProjectReferences {
			if pr.Include == "" {
				continue
			}
			ref, err := load(h.resolve(pr.Include), loading)
			if err != nil {
				return nil, &LoadError{Path: abs, Reason: "cannot resolve project reference", Err: err}
			}
			h.references = append(h.references, "-r:"+ref.OutputAssembly())
		}
	}
	for _, ig := range doc.ItemGroups {
		for _, r := range ig.References {
			target := r.Include
			if r.HintPath != "" {
				target = h.resolve(r.HintPath)
			}
			if target == "" {
				continue
			}
			h.references = append(h.references, "-r:"+target)
		}
	}

	slog.Debug("Loaded project",
		"path", abs,
		"source_files", len(h.sourceFiles),
		"references", len(h.references))

	return h, nil
}

func mergeProperty(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

// resolve makes a path absolute relative to the project's own directory
func (h *Handle) resolve(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(h.dir, path))
}

func (h *Handle) Path() string { return h.path }

func (h *Handle) LoadedAt() time.Time { return h.loadedAt }

// Stale reports whether the project description on disk is newer than the
// handle's load instant. The resolver never refreshes on its own.
func (h *Handle) Stale() bool {
	info, err := os.Stat(h.path)
	if err != nil {
		return true
	}
	return info.ModTime().After(h.loadedAt)
}

// SourceFiles returns the project's source files as absolute paths, in
// project order
func (h *Handle) SourceFiles() []string {
	files := make([]string, len(h.sourceFiles))
	copy(files, h.sourceFiles)
	return files
}

// CompilerArguments returns the checker invocation flags. The ordering is
// deterministic: --noframework, one --define per preprocessor symbol, then
// the debug, optimize and tailcalls toggles, then free-form flags.
func (h *Handle) CompilerArguments() []string {
	args := []string{"--noframework"}

	for _, sym := range splitDefineConstants(h.props.DefineConstants) {
		args = append(args, "--define:"+sym)
	}

	args = append(args,
		toggleFlag("--debug", parseBoolProperty(h.props.DebugSymbols)),
		toggleFlag("--optimize", parseBoolProperty(h.props.Optimize)),
		toggleFlag("--tailcalls", parseBoolProperty(h.props.Tailcalls)),
	)

	args = append(args, strings.Fields(h.props.OtherFlags)...)

	return args
}

// References returns one "-r:<path>" entry per resolved reference, with
// referenced-project outputs preceding plain assembly references
func (h *Handle) References() []string {
	refs := make([]string, len(h.references))
	copy(refs, h.references)
	return refs
}

// OutputAssembly returns the path of the assembly this project produces
func (h *Handle) OutputAssembly() string {
	name := h.props.AssemblyName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(h.path), filepath.Ext(h.path))
	}
	out := h.props.OutputPath
	if out == "" {
		out = "bin"
	}
	return filepath.Join(h.resolve(out), name+".dll")
}

// splitDefineConstants splits a DefineConstants value on semicolons, commas
// and spaces, dropping empty entries
func splitDefineConstants(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == ',' || r == ' '
	})
}

// parseBoolProperty treats absent or unparsable values as false, not errors
func parseBoolProperty(value string) bool {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return false
	}
	return b
}

func toggleFlag(name string, enabled bool) string {
	if enabled {
		return name + "+"
	}
	return name + "-"
}
