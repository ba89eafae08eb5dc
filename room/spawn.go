package room

import "math/rand"

// spawnPoints is the fixed map layout. Game start deals each member one
// point, no two members share one.
var spawnPoints = [][2]float64{
	{-3.972, 3.703},
	{10.897, 4.033},
	{11.737, -5.216},
	{5.647, -5.126},
	{-6.202, -5.126},
	{-13.262, 4.213},
	{-22.742, 3.653},
	{-21.622, -6.936},
	{-124.732, -6.886},
	{-15.702, 6.863},
	{-1.562, 6.173},
	{-13.857, 6.073},
	{5.507, 11.963},
	{-18.252, 12.453},
	{-1.752, -7.376},
	{21.517, -4.826},
	{21.717, 3.223},
	{23.877, 10.683},
	{15.337, -12.296},
	{-15.202, -4.736},
}

// RandomSpawnPoints returns count distinct spawn positions in random order.
// An out-of-range count returns nil.
func RandomSpawnPoints(count int) [][2]float64 {
	if count <= 0 || count > len(spawnPoints) {
		return nil
	}
	perm := rand.Perm(len(spawnPoints))
	out := make([][2]float64, count)
	for i := 0; i < count; i++ {
		out[i] = spawnPoints[perm[i]]
	}
	return out
}
