package nav

import (
	"testing"

	"finitefield.org/corporate-web/internal/locale"
)

func registry(t *testing.T) *locale.Registry {
	t.Helper()
	reg, err := locale.NewRegistry(locale.DefaultConfig())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func TestBuildLocalizesHrefsAndMarksActive(t *testing.T) {
	reg := registry(t)
	items := Build(reg, "en", "/en/products/ff-pt100")
	if len(items) != len(Main) {
		t.Fatalf("expected %d items, got %d", len(Main), len(items))
	}
	if items[0].Href != "/en/products" || !items[0].Active {
		t.Fatalf("unexpected products item %+v", items[0])
	}
	for _, it := range items[1:] {
		if it.Active {
			t.Fatalf("only products should be active, got %+v", it)
		}
	}

	tr := Build(reg, "tr", "/urunler")
	if tr[0].Href != "/urunler" || !tr[0].Active {
		t.Fatalf("unexpected tr products item %+v", tr[0])
	}
	// "/urunlerx" shares a prefix but is a different section.
	if Build(reg, "tr", "/urunlerx")[0].Active {
		t.Fatalf("prefix without boundary must not be active")
	}
}

func TestBreadcrumbs(t *testing.T) {
	reg := registry(t)
	crumbs := Breadcrumbs(reg, "en", "/products/ff-pt100", "FF-PT100 Sensor")
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %+v", crumbs)
	}
	if crumbs[0].Href != "/en" || crumbs[0].LabelKey != "nav.home" {
		t.Fatalf("unexpected home crumb %+v", crumbs[0])
	}
	if crumbs[1].Href != "/en/products" || crumbs[1].LabelKey != "nav.products" || crumbs[1].Active {
		t.Fatalf("unexpected section crumb %+v", crumbs[1])
	}
	if crumbs[2].Label != "FF-PT100 Sensor" || !crumbs[2].Active || crumbs[2].LabelKey != "" {
		t.Fatalf("unexpected leaf crumb %+v", crumbs[2])
	}

	home := Breadcrumbs(reg, "tr", "/", "")
	if len(home) != 1 || home[0].Href != "/" || !home[0].Active {
		t.Fatalf("unexpected home crumbs %+v", home)
	}

	page := Breadcrumbs(reg, "tr", "/gizlilik-politikasi", "")
	if page[1].Label != "Gizlilik politikasi" || page[1].LabelKey != "" {
		t.Fatalf("unexpected page crumb %+v", page[1])
	}
}

func TestLanguages(t *testing.T) {
	reg := registry(t)
	langs := Languages(reg, reg.AlternateLinks(locale.RouteNews, "x"), "es")
	if len(langs) != 4 {
		t.Fatalf("expected 4 languages, got %d", len(langs))
	}
	if langs[0].Name != "Türkçe" || langs[0].Href != "/haberler/x" {
		t.Fatalf("unexpected first language %+v", langs[0])
	}
	if !langs[2].Active || langs[2].Href != "/es/noticias/x" {
		t.Fatalf("unexpected es language %+v", langs[2])
	}
}
