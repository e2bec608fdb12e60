package interfaces

// Compile-time interface implementation checks. These ensure that concrete
// types satisfy their interfaces, catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/content"
	"github.com/Nawfay/bookclub/internal/covers"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/database/notes"
	"github.com/Nawfay/bookclub/internal/http"
	"github.com/Nawfay/bookclub/internal/metadata"
	"github.com/Nawfay/bookclub/internal/tasks"
)

// Data access layer. ClubStore aggregates the per-domain repositories and
// backs most of the read/write surfaces.
var (
	_ club.Store         = (*database.ClubStore)(nil)
	_ http.BookCatalog   = (*database.ClubStore)(nil)
	_ http.FileStore     = (*database.ClubStore)(nil)
	_ content.FileSource = (*database.ClubStore)(nil)
	_ tasks.PaceStore    = (*database.ClubStore)(nil)
)

// Notes repository backs the notes API, the reader overlay and the
// re-anchoring task.
var (
	_ http.NoteStore        = (*notes.Repository)(nil)
	_ http.PageNotes        = (*notes.Repository)(nil)
	_ tasks.NoteAnchorStore = (*notes.Repository)(nil)
)

// Aggregation and paging
var (
	_ http.BookAssembler  = (*club.Assembler)(nil)
	_ http.SessionMutator = (*club.Assembler)(nil)
	_ http.PageProvider   = (*content.Provider)(nil)
	_ tasks.PageSource    = (*content.Provider)(nil)
)

// Membership
var _ http.InviteLister = (*invites.Repository)(nil)

// External services
var (
	_ http.MetadataProvider = (*metadata.OpenLibraryClient)(nil)
	_ http.CoverCache       = (*covers.Cache)(nil)
)
