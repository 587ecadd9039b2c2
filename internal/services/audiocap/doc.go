// Package audiocap wraps the hosted audio-captioning model used to describe
// non-speech background sound. The model is served behind a Gradio HTTP API:
// the clip is uploaded first, then a predict call is queued and its result
// read back from the event stream.
package audiocap
