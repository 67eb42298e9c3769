/*
Package spashell serves "Single Page Applications" (SPAs) from an immutable,
in-memory bundle of pre-built static assets, supporting client-side DOM
routing by falling back to the SPA shell (index.html).

A Store holds the asset bundle. It is populated exactly once, typically from
an embedded build output directory using StoreFromFS, and never changes
afterwards, so any number of requests can read from it concurrently.

The Handler type implements http.Handler. For each request it derives a single
candidate key from the (percent-encoded) request path:

  - "" and "/" resolve to index.html,
  - paths containing a "." anywhere are file-like and resolve to themselves,
    minus a single leading "/",
  - all other paths are client-side routes and resolve to index.html.

Assets other than the shell are served with a long-lived immutable
Cache-Control directive, as the SPA build step is expected to content-hash
their file names. The shell itself is always served with "no-cache".

Please note that candidate keys are never cleaned: "/../secret.txt" simply
looks up the key "../secret.txt", which a Store built from an fs.FS can never
contain. Anyone backing a Store by other means must reject keys with ".."
segments themselves.
*/
package spashell
