// Package chatapi provides the client for an OpenAI-compatible chat completion
// endpoint and the image generation endpoint that sits next to it.
//
// # Entry Points
//
// NewClient: construct a client from a config.Config.
// Client.Ready: report an incomplete configuration or unusable key without I/O.
// Client.TestStandardAPI: send the fixed test message, return the raw response.
// Client.GenerateCharacterProfile / Client.PolishCharacterProfile: text
// workflows returning choices[0].message.content.
// Client.RecognizeImage: multimodal request with an inline base64 image.
// Client.GenerateImage: image generation returning data[0].url.
//
// # Failures
//
// Calls never retry and never format user-facing messages. Transport and
// status failures are returned as *services.Failure with the kind already
// decided; guard refusals wrap services.ErrValidation or
// services.ErrConfiguration. Rendering is left to the diagnose package.
//
// # Timeouts
//
// Requests are unbounded unless request_timeout_seconds is configured or the
// caller's context carries a deadline.
package chatapi
