// Package models contains the catalog's persistent content types.
//
// Content types:
//   - [Node] : artist, band, album, and song content nodes
//   - [Term] : genre taxonomy terms in the music_genre vocabulary
//   - [MediaAsset] : downloaded cover/thumbnail images
//
// Transfer types:
//   - [MergedRecord] : one record assembled from multiple provider payloads
package models
