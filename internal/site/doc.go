// Package site is the build pipeline integrations extend.
//
// A Pipeline starts from its configuration (source, app and build
// directories, configured routes, router middleware). Integrations register
// templates, plugins, application routes, middleware and at most one route
// generator through its methods; nothing else mutates pipeline state.
// Generate resolves the final route list and WriteBuild materializes the
// result into the build directory.
package site
