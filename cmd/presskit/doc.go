// Command presskit drives the media staging pipeline: rendering animations,
// transcoding them for the web, extracting poster frames, and staging the
// results into the deployable site tree.
package main
