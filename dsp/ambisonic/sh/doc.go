// Package sh evaluates real spherical harmonics and the quadrature used to
// fit spatial transforms.
//
// Channels follow ACN ordering (index l*l + l + m) and either N3D or SN3D
// normalisation, without the Condon-Shortley phase. Directions are unit
// vectors with x pointing front, y left and z up; azimuth is measured
// counter-clockwise from the front and elevation upward from the horizon.
//
// A [Basis] bundles the harmonics sampled at a fixed product [Grid]
// (Gauss-Legendre in sin(elevation) times an equiangular azimuth ring)
// with the weighted least-squares decoder computed by SVD. Bases are cached
// per order, so repeated transform builds only pay for the evaluation of
// the warped directions.
package sh
