package http

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/service"
)

const circleVertices = 64

// geofenceCollection renders the reference pin and the radius circle. The
// collection bbox is the map region, span degrees wide around the reference.
func geofenceCollection(ref domain.Position, radius, span float64) *geojson.FeatureCollection {
	pin := geom.NewPointFlat(geom.XY, []float64{ref.Lon, ref.Lat})

	flat := make([]float64, 0, (circleVertices+1)*2)
	for i := 0; i < circleVertices; i++ {
		p := service.Offset(ref, 360*float64(i)/circleVertices, radius)
		flat = append(flat, p.Lon, p.Lat)
	}
	flat = append(flat, flat[0], flat[1])

	circle := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})

	half := span / 2
	region := geom.NewBounds(geom.XY).Set(ref.Lon-half, ref.Lat-half, ref.Lon+half, ref.Lat+half)

	return &geojson.FeatureCollection{
		BBox: region,
		Features: []*geojson.Feature{
			{
				ID:       "reference",
				Geometry: pin,
				Properties: map[string]interface{}{
					"title": "Freedom",
				},
			},
			{
				ID:       "boundary",
				Geometry: circle,
				Properties: map[string]interface{}{
					"radius_meters": radius,
				},
			},
		},
	}
}
