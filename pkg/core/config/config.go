package config

import (
	"os"
	"path/filepath"
	"time"

	fconfig "github.com/msto63/devcmd/foundation/core/config"
	dcerror "github.com/msto63/devcmd/foundation/core/error"
)

// EnvConfigPath names the environment variable that overrides discovery.
const EnvConfigPath = "DEVCMD_CONFIG"

// PyProjectFile is the shared Python build configuration file; devcmd reads
// its [tool.dev-cmd] table.
const PyProjectFile = "pyproject.toml"

// PyProjectPrefix is the key path of the devcmd table inside pyproject.toml.
var PyProjectPrefix = []string{"tool", "dev-cmd"}

// DefaultGracePeriod applies when neither the configuration nor the command
// line sets a grace period.
const DefaultGracePeriod = 5 * time.Second

// ConfigFiles lists the file names probed in every directory, in priority order.
var ConfigFiles = []string{"dev-cmd.toml", "dev-cmd.yaml", "dev-cmd.yml", PyProjectFile}

// Source is the raw devcmd table together with where it came from.
type Source struct {
	// Table holds the devcmd keys (commands, tasks, default, ...)
	Table *fconfig.Map

	// ProjectDir is the directory containing the config file; command
	// working directories must stay inside it.
	ProjectDir string

	// Path is the absolute path of the config file
	Path string

	// KeyPrefix is prepended to key paths in diagnostics, "tool.dev-cmd"
	// for pyproject.toml and empty otherwise.
	KeyPrefix string
}

// Locate returns the config file to use: the explicit path if given, then
// $DEVCMD_CONFIG, then the first candidate found walking upward from start.
func Locate(explicit, start string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return os.ExpandEnv(env), nil
	}

	candidates := make([]fconfig.Candidate, 0, len(ConfigFiles))
	for _, name := range ConfigFiles {
		c := fconfig.Candidate{Filename: name}
		if name == PyProjectFile {
			c.Accept = hasDevCmdTable
		}
		candidates = append(candidates, c)
	}
	return fconfig.FindConfigFile(fconfig.DiscoveryOptions{Start: start, Candidates: candidates})
}

func hasDevCmdTable(path string) (bool, error) {
	doc, err := fconfig.Load(path)
	if err != nil {
		return false, err
	}
	_, ok := doc.Root.Lookup(PyProjectPrefix...)
	return ok, nil
}

// Load reads the config file at path and extracts the devcmd table
func Load(path string) (*Source, error) {
	doc, err := fconfig.Load(path)
	if err != nil {
		return nil, err
	}

	src := &Source{
		Table:      doc.Root,
		ProjectDir: filepath.Dir(doc.FilePath),
		Path:       doc.FilePath,
	}
	if filepath.Base(doc.FilePath) != PyProjectFile {
		return src, nil
	}

	prefix := PyProjectPrefix[0] + "." + PyProjectPrefix[1]
	raw, ok := doc.Root.Lookup(PyProjectPrefix...)
	if !ok {
		return nil, dcerror.Newf("%s has no [%s] table", doc.FilePath, prefix).
			WithCode(dcerror.CodeMissingConfig).
			WithOperation("config.Load").
			WithDetail("filePath", doc.FilePath)
	}
	table, ok := raw.(*fconfig.Map)
	if !ok {
		return nil, dcerror.Newf("[%s] in %s must be a table, found %s", prefix, doc.FilePath, fconfig.TypeName(raw)).
			WithCode(dcerror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("filePath", doc.FilePath)
	}
	src.Table = table
	src.KeyPrefix = prefix
	return src, nil
}
