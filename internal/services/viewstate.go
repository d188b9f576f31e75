package services

// ViewState is what a page shows for a piece of remote data. It is one of
// Loading, Failed, Empty or Loaded[T].
type ViewState interface {
	viewState()
}

// Loading shows Skeletons placeholder cards.
type Loading struct {
	Skeletons int
}

// Failed shows Message in place of the data.
type Failed struct {
	Message string
}

// Empty means the request succeeded with nothing to show.
type Empty struct{}

// Loaded carries the items to render.
type Loaded[T any] struct {
	Items []T
}

func (Loading) viewState()   {}
func (Failed) viewState()    {}
func (Empty) viewState()     {}
func (Loaded[T]) viewState() {}
