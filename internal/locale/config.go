package locale

// DefaultConfig returns the site's locale and route translation table.
// Turkish is the default locale and is served without a URL prefix.
func DefaultConfig() Config {
	return Config{
		Default: "tr",
		Locales: []LocaleConfig{
			{Code: "tr", Name: "Türkçe"},
			{Code: "en", Name: "English"},
			{Code: "es", Name: "Español"},
			{Code: "ru", Name: "Русский"},
		},
		Routes: map[RouteKey]map[string]string{
			RouteProducts: {"tr": "urunler", "en": "products", "es": "productos", "ru": "produkty"},
			RouteProjects: {"tr": "projeler", "en": "projects", "es": "proyectos", "ru": "proekty"},
			RouteNews:     {"tr": "haberler", "en": "news", "es": "noticias", "ru": "novosti"},
			RouteAbout:    {"tr": "hakkimizda", "en": "about", "es": "nosotros", "ru": "o-nas"},
			RouteContact:  {"tr": "iletisim", "en": "contact", "es": "contacto", "ru": "kontakty"},
			RouteServices: {"tr": "hizmetler", "en": "services", "es": "servicios", "ru": "uslugi"},
			RouteTeam:     {"tr": "ekibimiz", "en": "team", "es": "equipo", "ru": "komanda"},
		},
	}
}
