// Package watch keeps a build fresh: a gocron scheduler reruns generation
// on an interval and an fsnotify watcher reruns it when the configuration or
// user override files change. Serialize guarantees runs never overlap.
package watch
