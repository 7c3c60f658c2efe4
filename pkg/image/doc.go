// Package image describes raster images exchanged over a serial link.
//
// A Descriptor never owns pixel memory. It borrows a caller supplied buffer
// and records the shape of the image stored in it, so the same storage can be
// filled by a transfer, handed to an image algorithm and sent back out without
// copying.
package image
