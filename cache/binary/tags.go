package binary

// Tags are stored as an array of interleaved key and value strings in their
// original order. Common tags like building=yes are stored as a single
// unicode char from the Private Use Area (U+E000 - U+F8FF), common keys
// with variable values (name, addr:street, etc.) as a single ASCII control
// char (0x01-0x1f) followed by the value.
//
// building=yes needs 3 bytes instead of 13 bytes this way.

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
)

type codepoint rune

var tagsToCodePoint = map[string]map[string]codepoint{}
var codePointToTag = map[codepoint]element.Tag{}

var commonKeys = map[string]codepoint{}
var codePointToCommonKey = map[uint8]string{}
var nextKeyCodePoint = codepoint(1)
var maxKeyCodePoint = codepoint(31)

const minCodePoint = codepoint('\uE000')
const maxCodePoint = codepoint('\uF8FF')

var nextCodePoint = minCodePoint

const escapeRune = '\ufffd' // unicode replacement char

var errCorruptTags = errors.New("tag without value")

func addTagCodePoint(key, value string) {
	if nextCodePoint > maxCodePoint {
		panic("all codepoints used!")
	}
	valMap, ok := tagsToCodePoint[key]
	if !ok {
		tagsToCodePoint[key] = map[string]codepoint{value: nextCodePoint}
	} else {
		if _, ok := valMap[value]; ok {
			panic("duplicate entry for tag codepoints: " + key + " " + value)
		}
		valMap[value] = nextCodePoint
	}
	codePointToTag[nextCodePoint] = element.Tag{Key: key, Value: value}
	nextCodePoint++
}

func addCommonKey(key string) {
	if nextKeyCodePoint > maxKeyCodePoint {
		panic("all codepoints used!")
	}
	commonKeys[key] = nextKeyCodePoint
	codePointToCommonKey[uint8(nextKeyCodePoint)] = key
	nextKeyCodePoint++
}

func tagsAsArray(tags element.Tags) []string {
	if len(tags) == 0 {
		return nil
	}
	result := make([]string, 0, 2*len(tags))
	for _, tag := range tags {
		result = appendTag(result, tag.Key, tag.Value)
	}
	return result
}

func appendTag(arr []string, key, val string) []string {
	if valMap, ok := tagsToCodePoint[key]; ok {
		if c, ok := valMap[val]; ok {
			return append(arr, string(rune(c)))
		}
	}
	if c, ok := commonKeys[key]; ok {
		return append(arr, string(rune(c))+val)
	}
	// escape first char/rune if it collides with a common key or tag
	if len(key) > 0 && key[0] < 32 {
		key = string(escapeRune) + key
	} else if r, size := utf8.DecodeRuneInString(key); size >= 3 &&
		((codepoint(r) >= minCodePoint && codepoint(r) <= maxCodePoint) || r == escapeRune) {
		key = string(escapeRune) + key
	}
	return append(arr, key, val)
}

func tagsFromArray(arr []string) (element.Tags, error) {
	if len(arr) == 0 {
		return nil, nil
	}
	result := make(element.Tags, 0, len(arr)/2)
	for i := 0; i < len(arr); i++ {
		key := arr[i]
		if r, size := utf8.DecodeRuneInString(key); size >= 3 {
			if r == escapeRune {
				key = key[size:]
			} else if codepoint(r) >= minCodePoint && codepoint(r) < nextCodePoint {
				result = append(result, codePointToTag[codepoint(r)])
				continue
			}
		} else if len(key) > 0 && key[0] < 32 {
			result = append(result, element.Tag{Key: codePointToCommonKey[key[0]], Value: key[1:]})
			continue
		}
		if i+1 >= len(arr) {
			return nil, errCorruptTags
		}
		result = append(result, element.Tag{Key: key, Value: arr[i+1]})
		i++
	}
	return result, nil
}

func init() {
	//
	// DO NOT EDIT, REMOVE OR REORDER ANY OF THE FOLLOWING LINES!
	// Cached data depends on the codepoints. Only append.
	//

	addCommonKey("name")
	addCommonKey("addr:street")
	addCommonKey("addr:housenumber")
	addCommonKey("addr:city")
	addCommonKey("addr:postcode")
	addCommonKey("ref")
	addCommonKey("source")
	addCommonKey("note")

	addTagCodePoint("building", "yes")
	addTagCodePoint("highway", "residential")
	addTagCodePoint("highway", "service")
	addTagCodePoint("highway", "track")
	addTagCodePoint("highway", "footway")
	addTagCodePoint("highway", "unclassified")
	addTagCodePoint("highway", "path")
	addTagCodePoint("highway", "tertiary")
	addTagCodePoint("highway", "secondary")
	addTagCodePoint("highway", "primary")
	addTagCodePoint("oneway", "yes")
	addTagCodePoint("natural", "water")
	addTagCodePoint("natural", "wood")
	addTagCodePoint("landuse", "forest")
	addTagCodePoint("landuse", "residential")
	addTagCodePoint("landuse", "grass")
	addTagCodePoint("landuse", "farmland")
	addTagCodePoint("landuse", "meadow")
	addTagCodePoint("waterway", "stream")
	addTagCodePoint("waterway", "river")
	addTagCodePoint("amenity", "parking")
	addTagCodePoint("area", "yes")
	addTagCodePoint("barrier", "fence")
	addTagCodePoint("boundary", "administrative")
	addTagCodePoint("type", "multipolygon")
	addTagCodePoint("type", "route")
	addTagCodePoint("type", "boundary")
	addTagCodePoint("surface", "asphalt")
	addTagCodePoint("access", "private")
	addTagCodePoint("railway", "rail")
	addTagCodePoint("leisure", "park")
	addTagCodePoint("power", "tower")
}
