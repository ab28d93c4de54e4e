// proxygen generates proxy stubs for Go interfaces so they can be
// implemented at run time through the proxy package.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/osgifx/console-agent/gen"
	"github.com/osgifx/console-agent/manifest"
)

var log = commonlog.GetLogger("proxygen")

func main() {
	configPath := flag.String("config", "", "Path to proxygen.toml (default: search upwards from the current directory)")
	output := flag.String("o", "", "Output file (overrides the configured output)")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: proxygen [options] [pattern Iface...]\n\n")
		fmt.Fprintf(os.Stderr, "Generates proxy stubs for the interfaces of a Go package.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  proxygen -config proxygen.toml          # stubs from a config file\n")
		fmt.Fprintf(os.Stderr, "  proxygen ./shell CommandSession         # one interface, to stdout\n")
		fmt.Fprintf(os.Stderr, "  proxygen -o stubs_gen.go ./shell        # all interfaces, to a file\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	if err := run(*configPath, *output, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, output string, args []string) error {
	var (
		model *gen.PackageModel
		err   error
	)
	if len(args) > 0 {
		model, err = adHoc(args)
	} else {
		model, output, err = fromManifest(configPath, output)
	}
	if err != nil {
		return err
	}

	log.Infof("generating %d contract stub(s) and %d set stub(s) for %s",
		len(model.Contracts), len(model.Sets), model.ImportPath)

	code, err := gen.Generate(model)
	if err != nil {
		return fmt.Errorf("generating stubs: %w", err)
	}

	if output == "" {
		_, err = os.Stdout.WriteString(code)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	log.Infof("wrote %s", output)
	return nil
}

// adHoc introspects the package named on the command line.
func adHoc(args []string) (*gen.PackageModel, error) {
	var filter map[string]bool
	if len(args) > 1 {
		filter = make(map[string]bool)
		for _, name := range args[1:] {
			filter[name] = true
		}
	}
	model, err := gen.IntrospectPackage(args[0], filter)
	if err != nil {
		return nil, fmt.Errorf("introspecting %s: %w", args[0], err)
	}
	return model, nil
}

func fromManifest(configPath, output string) (*gen.PackageModel, string, error) {
	var (
		m   *manifest.Manifest
		err error
	)
	if configPath != "" {
		m, err = manifest.LoadFile(configPath)
	} else {
		m, err = manifest.FindAndLoad(".")
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if m == nil {
		return nil, "", fmt.Errorf("no %s found and no package specified", manifest.FileName)
	}
	log.Debugf("using %s", filepath.Join(m.Dir, manifest.FileName))

	model, err := gen.IntrospectPackage(m.Package.Import, m.Include())
	if err != nil {
		return nil, "", fmt.Errorf("introspecting %s: %w", m.Package.Import, err)
	}

	defaults := m.Defaults()
	for i := range model.Contracts {
		model.Contracts[i].Defaults = defaults[model.Contracts[i].Name]
	}
	for _, s := range m.Sets {
		model.Sets = append(model.Sets, gen.SetModel{
			Contracts: append([]string{s.Primary}, s.Extra...),
		})
	}

	if output == "" {
		output = m.OutputPath()
	}
	return model, output, nil
}
