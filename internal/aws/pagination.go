package aws

import "context"

// collectPages drains an SDK paginator into a flat slice.
func collectPages[Output any, Item any](
	ctx context.Context,
	hasMore func() bool,
	nextPage func(context.Context) (Output, error),
	extract func(Output) []Item,
) ([]Item, error) {
	var items []Item
	for hasMore() {
		page, err := nextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, extract(page)...)
	}
	return items, nil
}
