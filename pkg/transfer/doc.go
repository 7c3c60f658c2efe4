// Package transfer implements the chunked image transfer protocol.
//
// Every exchange starts with a 3-byte marker followed by the image shape:
//
//	"STW" | "STR"   3 bytes, device writes / device reads
//	height          2 bytes, little endian
//	width           2 bytes, little endian
//	format          1 byte, bytes per pixel
//	payload         format*height*width bytes
//
// The payload is moved in chunks of link.MaxTransfer bytes followed by one
// remainder chunk when the size isn't a multiple of it. There is no
// acknowledgement, checksum or resumption: a failed receive means the whole
// exchange has to start over from the marker.
//
// Producer: device (Transport)
// Consumer: host (see package host)
package transfer
