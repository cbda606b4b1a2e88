package cmd

import (
	"github.com/AnyUserName/photoedit/internal/config"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/AnyUserName/photoedit/internal/matte"
)

// newGenerator builds the configured matte backend. It returns a nil
// generator for "none" and for an exec backend whose binary is missing;
// sessions then report a matte generator error only if remove-bg is used.
func newGenerator(c *config.Config) (matte.Generator, string) {
	switch c.Matte {
	case config.MatteHTTP:
		return matte.NewHTTP(c.RembgURL,
			matte.WithModel(c.RembgModel),
			matte.WithMaskOnly(c.MaskOnly),
		), c.Matte
	case config.MatteExec:
		e := &matte.Exec{Binary: c.RembgPath, Model: c.RembgModel, MaskOnly: c.MaskOnly}
		if !e.Available() {
			logger.Debugf("%s not found in PATH; background removal disabled", c.RembgPath)
			return nil, config.MatteNone
		}
		return e, c.Matte
	default:
		return nil, config.MatteNone
	}
}
