package domain

// ProgressFunc reports crawl progress for commands that page to exhaustion.
// Called once per page: (20, 1), (40, 2), ...
type ProgressFunc func(loaded, page int)
