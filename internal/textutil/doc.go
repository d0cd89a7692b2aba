// Package textutil derives safe file names from free text.
//
// Prompts and descriptions typed by users become default output names for
// saved profiles and images. SanitizeFileName strips characters that are not
// portable across filesystems and caps the length; WithDefaultExt appends an
// extension only when the name has none.
package textutil
