package cli

import (
	"github.com/batrachia/libfetch/pkg/locator"
	"github.com/spf13/pflag"
)

// overrideFlags are the command-line counterparts of the override environment variables.
type overrideFlags struct {
	webrtc string
	sys    string
}

// FlagSet returns the override flags so that several commands can share them.
func (f *overrideFlags) FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("overrides", pflag.ContinueOnError)
	fs.StringVar(&f.webrtc, "webrtc-lib", "", "path to a prebuilt WebRTC static library (overrides "+locator.EnvWebRTCLibraryPath+")")
	fs.StringVar(&f.sys, "sys-lib", "", "path to a prebuilt sys static library (overrides "+locator.EnvSysLibraryPath+")")
	return fs
}

// Apply layers the flags that were set on the command line over the environment.
func (f *overrideFlags) Apply(fs *pflag.FlagSet, o locator.Overrides) locator.Overrides {
	if fs.Changed("webrtc-lib") {
		o = o.WithFlag(locator.KindWebRTC, f.webrtc)
	}
	if fs.Changed("sys-lib") {
		o = o.WithFlag(locator.KindSys, f.sys)
	}
	return o
}
