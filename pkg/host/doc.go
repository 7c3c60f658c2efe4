// Package host implements the peer side of the image transfer protocol.
//
// The device starts every exchange. The host scans the byte stream for a
// marker, decodes the metadata, then either reads the announced payload
// ("STW") or streams a payload of the requested shape ("STR") in the same
// chunk layout, without any acknowledgement in between.
package host
