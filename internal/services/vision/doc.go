// Package vision wraps the vision-language model used to describe scene
// frames. The client sends every frame matched to a sentence interval in one
// chat completion request so the model treats them as a single continuous
// cooking moment.
package vision
