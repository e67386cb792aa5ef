package commands

import (
	"github.com/claimpilot/pagegen/internal/audit"
)

// AuditCmd implements the 'audit' command.
type AuditCmd struct {
	Dir    string `arg:"" optional:"" help:"Output tree to audit (defaults to output.directory)"`
	Format string `help:"Output format" enum:"text,json" default:"text"`
}

func (a *AuditCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}
	dir := a.Dir
	if dir == "" {
		dir = cfg.Output.Directory
	}

	res, err := audit.Dir(dir, audit.Options{RootID: cfg.Site.RootID})
	if err != nil {
		return err
	}
	if err := audit.Write(g.Stdout, res, dir, a.Format); err != nil {
		return err
	}
	return res.Err()
}
