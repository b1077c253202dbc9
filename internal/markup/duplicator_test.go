package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const productURL = "https://shop.example/p/sofa"
const variantURL = "https://shop.example/p/sofa?attribute_pa_fabric-color=blue"

func TestAugment_SingleClone(t *testing.T) {
	fragment := `<ul><li class="product post-12"><a href="https://shop.example/p/sofa"><img src="/a.jpg" srcset="/a.jpg 1x"></a><a class="btn" href="https://shop.example/p/sofa">Buy</a></li></ul>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    12,
		OriginalURLs: []string{productURL},
		Variants: []VariantCard{
			{ImageURL: "/v.jpg", URL: variantURL},
		},
	}})

	want := `<ul>` +
		`<li class="product post-12"><a href="https://shop.example/p/sofa"><img src="/a.jpg" srcset="/a.jpg 1x"></a><a class="btn" href="https://shop.example/p/sofa">Buy</a></li>` +
		`<li class="product post-12"><a href="` + variantURL + `"><img src="/v.jpg"></a><a class="btn" href="` + variantURL + `">Buy</a></li>` +
		`</ul>`
	assert.Equal(t, want, got)
}

func TestAugment_MultipleVariants(t *testing.T) {
	fragment := `<li class="post-5 card"><a href="https://shop.example/p/sofa">x</a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    5,
		OriginalURLs: []string{productURL},
		Variants: []VariantCard{
			{ImageURL: "/v1.jpg", URL: productURL + "?attribute_pa_fabric-color=red"},
			{ImageURL: "/v2.jpg", URL: productURL + "?attribute_pa_fabric-color=green"},
		},
	}})

	assert.Equal(t, 3, strings.Count(got, `class="post-5 card"`))
	assert.Contains(t, got, "attribute_pa_fabric-color=red")
	assert.Contains(t, got, "attribute_pa_fabric-color=green")
	// Clones come after the original in queue order.
	assert.Less(t, strings.Index(got, "=red"), strings.Index(got, "=green"))
}

func TestAugment_NestedSameTag(t *testing.T) {
	fragment := `<div class="card post-7"><div class="inner"><a href="https://shop.example/p/sofa">x</a></div></div><p>after</p>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    7,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	// The clone must contain the full nested structure and land before the
	// trailing paragraph.
	assert.Equal(t, 2, strings.Count(got, `class="card post-7"`))
	assert.Equal(t, 2, strings.Count(got, `class="inner"`))
	assert.True(t, strings.HasSuffix(got, "</div><p>after</p>"))
}

func TestAugment_MarkerIsWholeToken(t *testing.T) {
	fragment := `<li class="product post-123"><a href="https://shop.example/p/sofa">x</a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    12,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Equal(t, fragment, got)
}

func TestAugment_TwoProductsInOneFragment(t *testing.T) {
	fragment := `<ul>` +
		`<li class="post-21"><a href="https://shop.example/p/a">a</a></li>` +
		`<li class="post-22"><a href="https://shop.example/p/b">b</a></li>` +
		`</ul>`

	// Plans deliberately out of document order.
	got := Augment(fragment, []CardPlan{
		{
			ProductID:    22,
			OriginalURLs: []string{"https://shop.example/p/b"},
			Variants:     []VariantCard{{ImageURL: "/b2.jpg", URL: "https://shop.example/p/b?attribute_pa_fabric-color=red"}},
		},
		{
			ProductID:    21,
			OriginalURLs: []string{"https://shop.example/p/a"},
			Variants:     []VariantCard{{ImageURL: "/a2.jpg", URL: "https://shop.example/p/a?attribute_pa_fabric-color=red"}},
		},
	})

	assert.Equal(t, 2, strings.Count(got, `class="post-21"`))
	assert.Equal(t, 2, strings.Count(got, `class="post-22"`))
	// Each clone sits directly after its own card.
	assert.Less(t, strings.Index(got, "/a2.jpg"), strings.Index(got, `class="post-22"`))
}

func TestAugment_SrcsetReplacedWhenVariantHasOne(t *testing.T) {
	fragment := `<li class="post-3"><a href="https://shop.example/p/sofa"><img src="/a.jpg" srcset="/a.jpg 1x, /a2x.jpg 2x"></a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    3,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", Srcset: "/v.jpg 1x, /v2x.jpg 2x", URL: variantURL}},
	}})

	assert.Contains(t, got, `srcset="/v.jpg 1x, /v2x.jpg 2x"`)
	// The original card keeps its own srcset.
	assert.Contains(t, got, `srcset="/a.jpg 1x, /a2x.jpg 2x"`)
}

func TestAugment_DataSrcRewritten(t *testing.T) {
	fragment := `<li class="post-4"><a href="https://shop.example/p/sofa"><img src="/ph.gif" data-src="/a.jpg" data-srcset="/a.jpg 1x"></a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    4,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Contains(t, got, `data-src="/v.jpg"`)
	// Lazy-load srcset is dropped in the clone rather than left stale.
	assert.Equal(t, 1, strings.Count(got, "data-srcset"))
}

func TestAugment_HrefEntityEncoding(t *testing.T) {
	original := "https://shop.example/p/sofa?ref=home"
	fragment := `<li class="post-9"><a href="https://shop.example/p/sofa?ref=home&amp;src=grid">x</a></li>`

	// The rendered href has an extra encoded parameter, so it does not match
	// and must stay untouched.
	got := Augment(fragment, []CardPlan{{
		ProductID:    9,
		OriginalURLs: []string{original},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})
	assert.Equal(t, 2, strings.Count(got, "ref=home&amp;src=grid"))

	// An entity-encoded href that decodes to the original is rewritten, and
	// the replacement keeps the entity encoding style.
	fragment = `<li class="post-9"><a href="https://shop.example/p/sofa?ref=home&amp;src=grid">x</a></li>`
	got = Augment(fragment, []CardPlan{{
		ProductID:    9,
		OriginalURLs: []string{"https://shop.example/p/sofa?ref=home&src=grid"},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL + "&x=1"}},
	}})
	assert.Contains(t, got, `href="https://shop.example/p/sofa?attribute_pa_fabric-color=blue&amp;x=1"`)
}

func TestAugment_PercentEncodedHref(t *testing.T) {
	fragment := `<li class="post-6"><a href="https://shop.example/p/azul%20ceu">x</a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    6,
		OriginalURLs: []string{"https://shop.example/p/azul ceu"},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Contains(t, got, `href="`+variantURL+`"`)
}

func TestAugment_UnrelatedHrefsUntouched(t *testing.T) {
	fragment := `<li class="post-8"><a href="https://shop.example/p/sofa">x</a><a href="https://shop.example/cart">cart</a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    8,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Equal(t, 2, strings.Count(got, `href="https://shop.example/cart"`))
	assert.Contains(t, got, `href="`+variantURL+`"`)
}

func TestAugment_NoVariantsIsNoOp(t *testing.T) {
	fragment := `<li class="post-10"><a href="https://shop.example/p/sofa">x</a></li>`

	got := Augment(fragment, []CardPlan{{ProductID: 10, OriginalURLs: []string{productURL}}})

	assert.Equal(t, fragment, got)
}

func TestAugment_MissingMarkerSkipsPlan(t *testing.T) {
	fragment := `<li class="post-1"><a href="https://shop.example/p/sofa">x</a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    99,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Equal(t, fragment, got)
}

func TestAugment_UnclosedCardSkipsPlan(t *testing.T) {
	fragment := `<li class="post-2"><a href="https://shop.example/p/sofa">x</a>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    2,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Equal(t, fragment, got)
}

func TestCardBounds_TagPrefixBoundary(t *testing.T) {
	// "<li" must not treat "<link" as a nested li.
	fragment := `<li class="post-11"><link rel="prefetch" href="/x"><a href="https://shop.example/p/sofa">x</a></li>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    11,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Equal(t, 2, strings.Count(got, `class="post-11"`))
}

func TestAugment_SelfClosingCard(t *testing.T) {
	fragment := `<img class="tile post-14" src="/a.jpg" /><span>after</span>`

	got := Augment(fragment, []CardPlan{{
		ProductID:    14,
		OriginalURLs: []string{productURL},
		Variants:     []VariantCard{{ImageURL: "/v.jpg", URL: variantURL}},
	}})

	assert.Equal(t, 2, strings.Count(got, `class="tile post-14"`))
	assert.Contains(t, got, `src="/v.jpg"`)
	assert.Equal(t, 1, strings.Count(got, "<span>after</span>"))
}
