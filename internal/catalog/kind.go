package catalog

import "sort"

// Kind describes one storefront's item schema: where its items come from,
// where its reviews are persisted and which payload fields feed the
// normalized Item.
type Kind struct {
	Name       string
	Collection string
	ReviewsKey string

	TitleField    string
	CategoryField string
	ExtraField    string
}

var (
	Phones = Kind{
		Name:          "phones",
		Collection:    "phones",
		ReviewsKey:    "phoneReviews",
		TitleField:    "name",
		CategoryField: "brand",
		ExtraField:    "processor",
	}

	Manga = Kind{
		Name:          "manga",
		Collection:    "Manga",
		ReviewsKey:    "mangaReviews",
		TitleField:    "title",
		CategoryField: "author",
		ExtraField:    "genre",
	}
)

var kinds = map[string]Kind{
	Phones.Name: Phones,
	Manga.Name:  Manga,
}

func KindByName(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

func KindNames() []string {
	out := make([]string, 0, len(kinds))
	for n := range kinds {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
