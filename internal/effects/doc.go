// Package effects implements the per-region distortion filters applied to the
// screenshot before it becomes the lock screen: blur and brightness.
//
// Every filter takes a pixbuf.Region and confines its reads and writes to that
// rectangle, which is what keeps one monitor's content from smearing into its
// neighbour and lets regions be filtered in parallel.
package effects
