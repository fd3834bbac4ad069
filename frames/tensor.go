package frames

import "gorgonia.org/tensor"

// ToTensor exports the frame as an HWC uint8 tensor for downstream ML
// consumers. The backing bytes are copied so the tensor stays valid after the
// extractor reuses its buffers on the next frame.
//
// Arguments:
// - f: The frame to export.
//
// Returns:
// - *tensor.Dense: A (height, width, depth) tensor of uint8 pixel data.
func ToTensor(f *Frame) *tensor.Dense {
	backing := make([]byte, len(f.pix))
	copy(backing, f.pix)
	return tensor.New(
		tensor.WithShape(f.height, f.width, f.depth),
		tensor.Of(tensor.Uint8),
		tensor.WithBacking(backing),
	)
}

// MaskChannel extracts byte 0 of every pixel into a (height, width) uint8
// tensor. For motion masks this is the authoritative channel; bytes 1 and 2
// are user scratch and are dropped.
func MaskChannel(f *Frame) *tensor.Dense {
	backing := make([]byte, f.width*f.height)
	for p, off := 0, 0; p < len(backing); p, off = p+1, off+f.depth {
		backing[p] = f.pix[off]
	}
	return tensor.New(
		tensor.WithShape(f.height, f.width),
		tensor.Of(tensor.Uint8),
		tensor.WithBacking(backing),
	)
}
