package model

// BuildingClass is one of the fixed German real-estate categories.
type BuildingClass string

// Building classes accepted by the request schema.
const (
	BuildingClassWohneigentum          BuildingClass = "Wohneigentum"
	BuildingClassEinZweifamilienhaus   BuildingClass = "Ein- und Zweifamilienhaus"
	BuildingClassEinfamilienhaus       BuildingClass = "Einfamilienhaus"
	BuildingClassMietwohngrundstueck   BuildingClass = "Mietwohngrundstück"
	BuildingClassGeschaeftsgrundstueck BuildingClass = "Geschäftsgrundstück"
	BuildingClassGemischtGenutzt       BuildingClass = "Gemischt genutztes Grundstück"
	BuildingClassSonstigeBebaute       BuildingClass = "Sonstige bebaute Grundstücke"
	BuildingClassTeileigentum          BuildingClass = "Teileigentum"
	BuildingClassWohnungseigentum      BuildingClass = "Wohnungseigentum"
	BuildingClassWohnungserbbaurecht   BuildingClass = "Wohnungserbbaurecht"
	BuildingClassErbbaurecht           BuildingClass = "Erbbaurecht"
	BuildingClassEigentumswohnung      BuildingClass = "Eigentumswohnung"
	BuildingClassMehrfamilienhaus      BuildingClass = "Mehrfamilienhaus"
	BuildingClassBuerogebaeude         BuildingClass = "Bürogebäude"
	BuildingClassEinzelhandel          BuildingClass = "Einzelhandel"
	BuildingClassGewerbeimmobilie      BuildingClass = "Gewerbeimmobilie"
	BuildingClassIndustrieimmobilie    BuildingClass = "Industrieimmobilie"
	BuildingClassLagerhalle            BuildingClass = "Lagerhalle"
	BuildingClassHotelGastronomie      BuildingClass = "Hotel / Gastronomie"
	BuildingClassPflegeheim            BuildingClass = "Pflegeheim"
	BuildingClassSonderimmobilie       BuildingClass = "Sonderimmobilie"
	BuildingClassBauland               BuildingClass = "Bauland"
	BuildingClassAckerland             BuildingClass = "Ackerland"
)

// UnspecifiedBuildingClass is the label stored in history when no class was given.
const UnspecifiedBuildingClass = "Nicht angegeben"

var buildingClasses = []BuildingClass{
	BuildingClassWohneigentum,
	BuildingClassEinZweifamilienhaus,
	BuildingClassEinfamilienhaus,
	BuildingClassMietwohngrundstueck,
	BuildingClassGeschaeftsgrundstueck,
	BuildingClassGemischtGenutzt,
	BuildingClassSonstigeBebaute,
	BuildingClassTeileigentum,
	BuildingClassWohnungseigentum,
	BuildingClassWohnungserbbaurecht,
	BuildingClassErbbaurecht,
	BuildingClassEigentumswohnung,
	BuildingClassMehrfamilienhaus,
	BuildingClassBuerogebaeude,
	BuildingClassEinzelhandel,
	BuildingClassGewerbeimmobilie,
	BuildingClassIndustrieimmobilie,
	BuildingClassLagerhalle,
	BuildingClassHotelGastronomie,
	BuildingClassPflegeheim,
	BuildingClassSonderimmobilie,
	BuildingClassBauland,
	BuildingClassAckerland,
}

// BuildingClasses returns every accepted building class in display order.
func BuildingClasses() []BuildingClass {
	out := make([]BuildingClass, len(buildingClasses))
	copy(out, buildingClasses)
	return out
}

// Valid reports whether c is one of the accepted classes. The empty class is
// not valid; callers treat it as "unspecified" before asking.
func (c BuildingClass) Valid() bool {
	for _, known := range buildingClasses {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the class for display, or UnspecifiedBuildingClass.
func (c BuildingClass) Label() string {
	if c == "" {
		return UnspecifiedBuildingClass
	}
	return string(c)
}
