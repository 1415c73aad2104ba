package scaffold

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"oxmapper/internal/common"
	"oxmapper/internal/logging/logfields"
	"oxmapper/mapping"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports

// ErrNoClasses is returned when the scanned packages bind no struct.
var ErrNoClasses = errors.New("no tagged structs found")

// Options shape the generated binding file.
type Options struct {
	Version          string
	DefaultNamespace string
	Namespaces       map[string]string

	// Dir is the directory packages are resolved from; the current one when empty.
	Dir string
}

// Scanner finds tagged structs in Go packages.
type Scanner struct {
	opts Options
	log  logrus.FieldLogger
}

// NewScanner creates a scanner that logs to log.
func NewScanner(log logrus.FieldLogger, opts Options) *Scanner {
	return &Scanner{opts: opts, log: log}
}

// Scan loads the packages matching patterns and returns the binding file for
// every tagged struct in them, classes sorted by type name.
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*mapping.BindingFile, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     s.opts.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	found := make([][]mapping.ClassBinding, len(pkgs))

	g, _ := errgroup.WithContext(ctx)
	for i, pkg := range pkgs {
		g.Go(func() error {
			classes, err := s.scanPackage(pkg)
			if err != nil {
				return fmt.Errorf("failed to scan package %s: %w", pkg.PkgPath, err)
			}

			found[i] = classes

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bf := &mapping.BindingFile{
		Version:          s.opts.Version,
		DefaultNamespace: s.opts.DefaultNamespace,
		Namespaces:       s.opts.Namespaces,
	}

	for _, classes := range found {
		bf.Classes = append(bf.Classes, classes...)
	}

	if len(bf.Classes) == 0 {
		return nil, fmt.Errorf("%v: %w", patterns, ErrNoClasses)
	}

	sort.SliceStable(bf.Classes, func(i, j int) bool {
		return bf.Classes[i].Type < bf.Classes[j].Type
	})

	return bf, nil
}

func (s *Scanner) scanPackage(pkg *packages.Package) ([]mapping.ClassBinding, error) {
	var classes []mapping.ClassBinding

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		st, ok := typeName.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}

		cb, ok, err := s.classBinding(common.PkgAlias(pkg.PkgPath)+"."+name, st)
		if err != nil {
			return nil, err
		}

		if ok {
			classes = append(classes, cb)
		}
	}

	return classes, nil
}

// classBinding mirrors mapping.FromStruct over go/types. Structs without a
// tagged root field are not bound.
func (s *Scanner) classBinding(className string, st *types.Struct) (mapping.ClassBinding, bool, error) {
	log := s.log.WithField(logfields.Class, className)

	cb := mapping.ClassBinding{Type: className}

	for i := range st.NumFields() {
		f := st.Field(i)

		raw, ok := reflect.StructTag(st.Tag(i)).Lookup(mapping.TagName)
		if !ok {
			continue
		}

		if !f.Exported() {
			log.WithField(logfields.Attribute, f.Name()).Warn("Ignoring tag on unexported field")
			continue
		}

		if f.Name() == mapping.RootField {
			cb.Root = raw
			continue
		}

		tag, err := mapping.ParseTag(raw)
		if err != nil {
			return mapping.ClassBinding{}, false, fmt.Errorf("%s.%s: %w", className, f.Name(), err)
		}

		if tag.Skip {
			continue
		}

		cb.Mappings = append(cb.Mappings, tag.Binding(f.Name()))
	}

	if cb.Root == "" {
		if len(cb.Mappings) > 0 {
			log.Warn("Tagged struct has no root element, skipping")
		}

		return mapping.ClassBinding{}, false, nil
	}

	log.WithField(logfields.Element, cb.Root).Debugf("Bound %d attributes", len(cb.Mappings))

	return cb, true, nil
}
