package cffsubr

import "runtime/debug"

const modulePath = "github.com/tdewolff/cffsubr"

// Version is the version of this module as recorded in the build info, or 0.0.0+unknown when it is not available.
var Version = moduleVersion()

func moduleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		module := &info.Main
		for _, dep := range info.Deps {
			if dep.Path == modulePath {
				module = dep
				break
			}
		}
		if module.Replace != nil {
			module = module.Replace
		}
		if module.Path == modulePath && module.Version != "" && module.Version != "(devel)" {
			return module.Version
		}
	}
	return "0.0.0+unknown"
}
