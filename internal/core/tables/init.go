// Package tables registers the inventory and orders definitions with the
// core registry. Import it for side effects before using core.Service.
package tables
