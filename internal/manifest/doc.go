// Package manifest assembles spm.json, the index of uploaded platform
// archives consumed by the package-manager integration.
//
// Three document shapes exist and the caller always names the one it wants:
//
//   - flat: every archive under "platforms";
//   - split: archives divided into "loadable" and "static";
//   - extensions: archives grouped per extension name, each with its own
//     description and platform list.
//
// Documents are validated against an embedded JSON schema before they are
// serialised.
package manifest
