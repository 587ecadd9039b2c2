// Package knowledge assembles the per-sentence knowledge track: transcript,
// procedure annotation, scene descriptions, and environment sound, one
// record per spoken sentence.
package knowledge
