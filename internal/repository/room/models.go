package room

const (
	SourceTypeYoutube = "youtube"
	SourceTypeLocal   = "local"
)

// Room is the immutable metadata record created once per room. Live
// session state is not stored here.
type Room struct {
	Id         string `redis:"id" json:"id"`
	SourceType string `redis:"source_type" json:"source_type"`
	// SourceRef is the youtube video id or the stored file name,
	// depending on SourceType.
	SourceRef string `redis:"source_ref" json:"source_ref"`
	// Title is a best-effort display title fetched at creation time.
	// Empty when the source exposes none.
	Title     string `redis:"title" json:"title"`
	CreatedAt int64  `redis:"created_at" json:"created_at"`
}

type SetRoomParams struct {
	Id         string
	SourceType string
	SourceRef  string
	Title      string
	CreatedAt  int64
}
