package headers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"blcc/pkg/transpiler"
)

// Config controls include resolution and artifact placement.
type Config struct {
	// SourceExtensions and HeaderExtensions name the dialect files the
	// resolver transpiles. Everything else is left for the compiler.
	SourceExtensions []string
	HeaderExtensions []string
	// IncludeDirs are searched after the including file's own directory.
	IncludeDirs []string
	// ArtifactDir receives transpiled output. Empty means a fresh
	// directory under the system temp dir.
	ArtifactDir string
	// Jobs bounds concurrent transpilations. Zero means no limit.
	Jobs int

	TabWidth        int
	DirectiveMarker rune
}

func (c Config) withDefaults() Config {
	if len(c.SourceExtensions) == 0 {
		c.SourceExtensions = []string{".blcpp", ".blcc", ".blc"}
	}
	if len(c.HeaderExtensions) == 0 {
		c.HeaderExtensions = []string{".blh"}
	}
	if c.DirectiveMarker == 0 {
		c.DirectiveMarker = transpiler.DefaultDirectiveMarker
	}
	return c
}

// Plan is the result of resolving and transpiling a set of entry files
// with everything they transitively include.
type Plan struct {
	Entries     []*Node
	ArtifactDir string

	nodes map[string]*Node
}

// Node returns the graph node for an absolute source path, nil if the path
// was never reached.
func (p *Plan) Node(path string) *Node {
	return p.nodes[path]
}

// Artifacts lists the entry files' transpiled outputs, in entry order.
func (p *Plan) Artifacts() []string {
	var out []string
	for _, n := range p.Entries {
		out = append(out, n.Artifact)
	}
	return out
}

// Lookup remaps a position inside any produced artifact back to its
// original source. Unknown files pass through unchanged, so compiler
// diagnostics for system headers stay intact.
func (p *Plan) Lookup(artifact string, line int) (string, int) {
	for _, n := range p.nodes {
		if n.Artifact == artifact && n.Map != nil {
			return n.Map.Lookup(line)
		}
	}
	return artifact, line
}

// Resolver discovers include graphs and transpiles every dialect file in
// them exactly once. It is safe for concurrent Run calls: results are
// memoized per absolute path and in-flight work is shared.
type Resolver struct {
	cfg        Config
	includePat *regexp.Regexp
	flight     singleflight.Group
}

func New(cfg Config) *Resolver {
	cfg = cfg.withDefaults()
	pat := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(string(cfg.DirectiveMarker)) +
		`\s*include\s*(["<])([^">]+)[">]`)
	return &Resolver{cfg: cfg, includePat: pat}
}

// Run resolves the include graph of the entry files and transpiles every
// dialect file reached. Discovery is sequential so cycles are reported
// deterministically with their full chain; transpilation runs in parallel,
// bounded by Jobs.
func (r *Resolver) Run(ctx context.Context, entries []string) (*Plan, error) {
	dir := r.cfg.ArtifactDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "blcc-"+uuid.NewString())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	plan := &Plan{ArtifactDir: dir, nodes: make(map[string]*Node)}

	for _, entry := range entries {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return nil, err
		}
		n, err := r.discover(ctx, plan, abs, nil, includeSite{file: entry})
		if err != nil {
			return nil, err
		}
		plan.Entries = append(plan.Entries, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.cfg.Jobs > 0 {
		g.SetLimit(r.cfg.Jobs)
	}
	for _, n := range plan.nodes {
		if !n.Dialect {
			continue
		}
		n := n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.transpileNode(n)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plan, nil
}

// includeSite is where an include directive appeared, for error positions.
type includeSite struct {
	file string
	line int
}

// discover walks the include graph depth first. stack holds the absolute
// paths currently being expanded; finding one of them again is a cycle.
func (r *Resolver) discover(ctx context.Context, plan *Plan, abs string, stack []string, site includeSite) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, s := range stack {
		if s == abs {
			chain := append(stack[indexOf(stack, abs):], abs)
			return nil, transpiler.NewError(transpiler.ErrIncludeCycle, site.file, site.line, 0,
				"include cycle: %s", strings.Join(baseNames(chain), " -> "))
		}
	}
	if n, ok := plan.nodes[abs]; ok {
		return n, nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	text := string(src)

	n := &Node{
		Path:    abs,
		Dialect: r.isDialect(abs),
		Guard:   DetectGuard(text),
	}
	if n.Dialect {
		n.Artifact = filepath.Join(plan.ArtifactDir, r.artifactName(abs))
		n.includes = r.scanIncludes(text)
	}
	plan.nodes[abs] = n
	if !n.Dialect {
		return n, nil
	}

	stack = append(stack, abs)
	for i := range n.includes {
		ref := &n.includes[i]
		target, found := r.resolveInclude(abs, ref)
		if !found {
			if r.isDialect(ref.name) {
				return nil, transpiler.NewError(transpiler.ErrUnresolvedInclude, abs, ref.line, 0,
					"cannot resolve include %q", ref.name)
			}
			continue // system or generated header, the compiler will find it
		}
		if !r.isDialect(target) {
			continue
		}
		child, err := r.discover(ctx, plan, target, stack, includeSite{file: abs, line: ref.line})
		if err != nil {
			return nil, err
		}
		ref.resolved = child
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// transpileNode reads, rewrites includes, transpiles, and writes the
// artifact for one dialect file. Work is shared per path so concurrent
// runs over overlapping graphs do not repeat it.
func (r *Resolver) transpileNode(n *Node) error {
	_, err, _ := r.flight.Do(n.Path, func() (interface{}, error) {
		src, err := os.ReadFile(n.Path)
		if err != nil {
			return nil, err
		}
		text := r.rewriteIncludes(string(src), n)

		res, terr := transpiler.Transpile(n.Path, text, transpiler.Config{
			TabWidth:        r.cfg.TabWidth,
			DirectiveMarker: r.cfg.DirectiveMarker,
		})
		if terr != nil {
			n.Err = terr
			return nil, terr
		}
		n.Map = res.Map
		if err := os.WriteFile(n.Artifact, []byte(res.Output), 0o644); err != nil {
			return nil, fmt.Errorf("write artifact for %s: %w", n.Path, err)
		}
		return nil, nil
	})
	return err
}

// rewriteIncludes redirects every resolved dialect include to its artifact
// path. Each replacement stays on its own line so the transpiler's line map
// remains valid for the whole file.
func (r *Resolver) rewriteIncludes(src string, n *Node) string {
	if len(n.includes) == 0 {
		return src
	}
	byLine := make(map[int]*includeRef, len(n.includes))
	for i := range n.includes {
		if n.includes[i].resolved != nil {
			byLine[n.includes[i].line] = &n.includes[i]
		}
	}
	if len(byLine) == 0 {
		return src
	}
	lines := strings.Split(src, "\n")
	for i := range lines {
		ref, ok := byLine[i+1]
		if !ok {
			continue
		}
		lines[i] = r.includePat.ReplaceAllStringFunc(lines[i], func(string) string {
			return string(r.cfg.DirectiveMarker) + `include "` + ref.resolved.Artifact + `"`
		})
	}
	return strings.Join(lines, "\n")
}

func (r *Resolver) scanIncludes(src string) []includeRef {
	var refs []includeRef
	for i, line := range strings.Split(src, "\n") {
		m := r.includePat.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		refs = append(refs, includeRef{
			name:   m[2],
			angled: m[1] == "<",
			line:   i + 1,
		})
	}
	return refs
}

// resolveInclude finds the file an include names: quoted includes search
// the including file's directory first, then the configured include dirs;
// angled includes search only the include dirs.
func (r *Resolver) resolveInclude(from string, ref *includeRef) (string, bool) {
	var dirs []string
	if !ref.angled {
		dirs = append(dirs, filepath.Dir(from))
	}
	dirs = append(dirs, r.cfg.IncludeDirs...)
	for _, d := range dirs {
		candidate := filepath.Join(d, ref.name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err == nil {
				return abs, true
			}
		}
	}
	return "", false
}

func (r *Resolver) isDialect(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range r.cfg.SourceExtensions {
		if ext == e {
			return true
		}
	}
	for _, e := range r.cfg.HeaderExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (r *Resolver) isHeader(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range r.cfg.HeaderExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// artifactName derives a stable output file name: the stem, a short hash
// of the absolute path to keep same-named headers from distinct
// directories apart, and the standard extension.
func (r *Resolver) artifactName(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	ext := ".cpp"
	if r.isHeader(abs) {
		ext = ".h"
	}
	return stem + "_" + hex.EncodeToString(sum[:])[:8] + ext
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
