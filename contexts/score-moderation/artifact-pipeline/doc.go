// Package artifactpipeline turns an accepted upload request into publishable
// assets: a title line, a description block, and a composed thumbnail.
//
// Asset resolution walks a content store, the game server's file endpoint, a
// direct media endpoint, and an ordered mirror chain; image composition is a
// pure deterministic pipeline; rasterization goes through headless Chrome.
// Every terminal failure maps to a single human-readable string, never a
// partial artifact.
package artifactpipeline
