// Команда sqlc раскладывает .sqlc.base.yaml по пакетам query: для каждого
// *.sql из sql.0.source генерируется отдельный конфиг с package = имя каталога.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const generatedConfigName = "sqlc.yaml"

type generator struct {
	base    *viper.Viper // sql.0 из базового конфига
	version string
	out     string // куда пишется временный sqlc.yaml
	dryRun  bool
}

// packageFor: internal/repository/pg/query/queries.sql -> query
func packageFor(file string) (string, string, error) {
	dir := filepath.Dir(file)
	pkg := filepath.Base(dir)
	if pkg == "." || pkg == string(os.PathSeparator) {
		return "", "", errors.Errorf("query file %s must live in a package directory", file)
	}
	return dir + string(os.PathSeparator), pkg, nil
}

// render собирает sqlc-конфиг для одного файла запросов.
func (g *generator) render(file string) ([]byte, error) {
	dir, pkg, err := packageFor(file)
	if err != nil {
		return nil, err
	}

	engine := viper.New()
	if err := engine.MergeConfigMap(g.base.AllSettings()); err != nil {
		return nil, errors.Wrap(err, "copy base settings")
	}
	engine.Set("gen.go.package", pkg)
	engine.Set("gen.go.out", dir)
	engine.Set("queries", file)

	settings := engine.AllSettings()
	delete(settings, "source")

	bs, err := yaml.Marshal(map[string]interface{}{
		"version": g.version,
		"sql":     []interface{}{settings},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal config to yaml")
	}
	return bs, nil
}

func (g *generator) generate(file string) error {
	bs, err := g.render(file)
	if err != nil {
		return err
	}
	if g.dryRun {
		fmt.Printf("# %s\n%s\n", file, bs)
		return nil
	}

	if err := os.WriteFile(g.out, bs, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", g.out)
	}
	defer os.Remove(g.out)

	cmd := exec.Command("sqlc", "generate", "--file", g.out)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "call sqlc: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

func sources(patterns []string) ([]string, error) {
	files := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		f, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "glob %s", pattern)
		}
		files = append(files, f...)
	}
	return files, nil
}

func run(baseDir string, dryRun bool) error {
	v := viper.New()
	v.SetConfigName(".sqlc.base")
	v.SetConfigType("yaml")
	v.AddConfigPath(baseDir)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read .sqlc.base.yaml")
	}

	files, err := sources(v.GetStringSlice("sql.0.source"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("sql.0.source matched no query files")
	}

	base := v.Sub("sql.0")
	if base == nil {
		return errors.New("has no sql.0 in config")
	}

	g := &generator{
		base:    base,
		version: v.GetString("version"),
		out:     filepath.Join(baseDir, generatedConfigName),
		dryRun:  dryRun,
	}
	for _, file := range files {
		if err := g.generate(file); err != nil {
			return errors.Wrap(err, file)
		}
		fmt.Printf("%s file complete\n", file)
	}
	return nil
}

func main() {
	dir := flag.String("dir", ".", "directory with .sqlc.base.yaml")
	dryRun := flag.Bool("dry-run", false, "print generated configs instead of calling sqlc")
	flag.Parse()

	if err := run(*dir, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("done")
}
