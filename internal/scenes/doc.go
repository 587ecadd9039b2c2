// Package scenes detects content cuts in a video and exports one
// representative frame per scene.
package scenes
