// Package motion - Streaming motion extraction over RGB video frames.
//
// The Extractor turns a sequence of equally sized RGB frames into per-frame
// binary motion masks. It maintains a self-adapting per-pixel background
// model: objects that stop moving fade into the background after a
// configurable settle time, and previously stable regions that start moving
// are re-detected.
//
// Pipeline Overview:
//
// ┌──────────────────────────────┐
// │ Input Frame (W×H RGB)        │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Downscale (3×3 box average)  │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Per-pixel difference/update  │
// │ (stability counters, nudge)  │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Reference promotion + mask   │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Morphology (erode, dilate)   │
// └──────┬───────────────────────┘
// ┌──────────────────────────────┐
// │ Output Mask (w×h, byte 0)    │
// └──────────────────────────────┘
//
// The extractor is strictly single threaded; GenerateMotionMask is a blocking
// call and all buffers are owned by one instance. Callers that need to
// process several streams in parallel create one Extractor per stream.
//
// Usage:
//
//	ex, err := motion.New(frame.Width(), frame.Height(), source.FPS(), false)
//	if err != nil {
//	    return err
//	}
//	for {
//	    frame, err := source.NextFrame()
//	    if err != nil {
//	        break
//	    }
//	    mask, err := ex.GenerateMotionMask(frame.Frame)
//	    if err != nil {
//	        return err
//	    }
//	    // byte 0 of each mask pixel is 255 where motion was detected
//	}
package motion
